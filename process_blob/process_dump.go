// Package process_blob provides an in-memory stand-in for a remote process:
// committed regions over byte slices, answering region queries and reads the
// way a live process does.
package process_blob

import (
	"fmt"
	"sync"
	"sync/atomic"

	"memwalk/process"
	"memwalk/process/memory_map"
)

// ProcessDump implements process.Process over regions held in memory
type ProcessDump struct {
	PID  process.ProcessID
	Name string

	mu        sync.RWMutex
	memoryMap []memory_map.MemoryRegion
	blobs     map[uint64][]byte // region address -> data
	failing   map[uint64]bool   // region address -> reads fail
	reads     atomic.Int64
}

var _ process.Process = (*ProcessDump)(nil)

// NewProcessDump creates a new, empty ProcessDump instance
func NewProcessDump() *ProcessDump {
	return &ProcessDump{
		blobs:   make(map[uint64][]byte),
		failing: make(map[uint64]bool),
	}
}

// Map adds a committed region at addr holding data
func (p *ProcessDump) Map(addr process.ProcessMemoryAddress, data []byte, protect memory_map.Protection) *ProcessDump {
	return p.MapRegion(memory_map.MemoryRegion{
		Address:           uint64(addr),
		Size:              uint(len(data)),
		State:             memory_map.MemCommit,
		Protect:           protect,
		AllocationProtect: protect,
	}, data)
}

// MapRegion adds an arbitrary region. data may be shorter than the region,
// reads past the end of data come back short. Overlapping regions panic.
func (p *ProcessDump) MapRegion(region memory_map.MemoryRegion, data []byte) *ProcessDump {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.memoryMap {
		if region.Address < existing.End() && existing.Address < region.End() {
			panic(fmt.Sprintf("region %x-%x overlaps %x-%x", region.Address, region.End(), existing.Address, existing.End()))
		}
	}

	p.memoryMap = append(p.memoryMap, region)
	memory_map.Sort(p.memoryMap)
	p.blobs[region.Address] = data
	return p
}

// FailReads makes every read of the region at addr fail
func (p *ProcessDump) FailReads(addr process.ProcessMemoryAddress) *ProcessDump {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[uint64(addr)] = true
	return p
}

// Reads returns how many ReadMemory calls were made
func (p *ProcessDump) Reads() int {
	return int(p.reads.Load())
}

func (p *ProcessDump) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PID = pid
	return nil
}

func (p *ProcessDump) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs = make(map[uint64][]byte)
	p.failing = make(map[uint64]bool)
	p.memoryMap = nil
	return nil
}

func (p *ProcessDump) GetPID() process.ProcessID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.PID
}

// GetMemoryMap returns a copy of the region list
func (p *ProcessDump) GetMemoryMap() ([]memory_map.MemoryRegion, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]memory_map.MemoryRegion, len(p.memoryMap))
	copy(result, p.memoryMap)
	return result, nil
}

// QueryRegion implements process.RegionQuerier
func (p *ProcessDump) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryRegion, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	region, ok := memory_map.Query(p.memoryMap, uint64(addr))
	if !ok {
		return memory_map.MemoryRegion{}, process.ErrRegionEnumerationEnded
	}
	return region, nil
}

// ReadMemory implements process.MemoryReader. Reads never span regions.
func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.reads.Add(1)

	p.mu.RLock()
	defer p.mu.RUnlock()

	// Find the region containing the address
	region := memory_map.Find(p.memoryMap, uint64(addr))
	if region == nil {
		return nil, process.ErrAddressNotMapped
	}
	if p.failing[region.Address] || !region.IsCommitted() || !region.IsReadable() {
		return nil, fmt.Errorf("read %s: access denied", addr.ToString())
	}

	data := p.blobs[region.Address]
	offset := uint64(addr) - region.Address
	end := offset + uint64(size)
	if end > uint64(region.Size) {
		return nil, fmt.Errorf("read size %d at %s crosses region end", size, addr.ToString())
	}
	if end > uint64(len(data)) {
		if offset >= uint64(len(data)) {
			return nil, fmt.Errorf("partial read: 0 of %d bytes", size)
		}
		out := make([]byte, uint64(len(data))-offset)
		copy(out, data[offset:])
		return out, fmt.Errorf("partial read: %d of %d bytes", len(out), size)
	}

	out := make([]byte, size)
	copy(out, data[offset:end])
	return out, nil
}
