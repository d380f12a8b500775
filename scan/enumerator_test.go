package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memwalk/process"
	"memwalk/process/memory_map"
	"memwalk/process_blob"
)

func TestRegionsFiltersAndAdvances(t *testing.T) {
	mem := &countingMemory{ProcessDump: process_blob.NewProcessDump().
		Map(0x1000, make([]byte, 0x1000), memory_map.PageReadWrite).
		Map(0x2000, make([]byte, 0x1000), memory_map.PageNoAccess).
		Map(0x5000, make([]byte, 0x2000), memory_map.PageExecuteRead)}

	regions := Snapshot(mem, 0)
	require.Len(t, regions, 2)
	assert.Equal(t, uint64(0x1000), regions[0].Address)
	assert.Equal(t, uint64(0x5000), regions[1].Address)

	// gap at 0, two mapped + gap 0x3000-0x5000, last mapped, then the end query
	assert.Equal(t, int64(6), mem.queries.Load())
	assert.Zero(t, mem.Reads())
}

func TestRegionsNeverOverlapOrGoBack(t *testing.T) {
	dump := process_blob.NewProcessDump()
	for i := 0; i < 20; i++ {
		protect := memory_map.PageReadWrite
		if i%3 == 0 {
			protect = memory_map.PageNoAccess
		}
		dump.Map(process.ProcessMemoryAddress(0x1000*(2*i+1)), make([]byte, 0x1000+i), protect)
	}

	var prevEnd uint64
	for region := range Regions(dump, 0) {
		assert.GreaterOrEqual(t, region.Address, prevEnd)
		prevEnd = region.End()
	}
	assert.NotZero(t, prevEnd)
}

func TestRegionsRestartable(t *testing.T) {
	dump := process_blob.NewProcessDump().
		Map(0x1000, make([]byte, 0x100), memory_map.PageReadWrite).
		Map(0x2000, make([]byte, 0x100), memory_map.PageReadWrite)

	seq := Regions(dump, 0)
	var first, second []uint64
	for r := range seq {
		first = append(first, r.Address)
	}
	for r := range seq {
		second = append(second, r.Address)
	}
	assert.Equal(t, []uint64{0x1000, 0x2000}, first)
	assert.Equal(t, first, second)
}

func TestRegionsEarlyBreak(t *testing.T) {
	dump := process_blob.NewProcessDump().
		Map(0x1000, make([]byte, 0x100), memory_map.PageReadWrite).
		Map(0x2000, make([]byte, 0x100), memory_map.PageReadWrite)

	var seen int
	for range Regions(dump, 0) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestRegionsClipsStartInsideRegion(t *testing.T) {
	dump := process_blob.NewProcessDump().Map(0x1000, make([]byte, 0x1000), memory_map.PageReadWrite)

	regions := Snapshot(dump, 0x1800)
	require.Len(t, regions, 1)
	assert.Equal(t, uint64(0x1800), regions[0].Address)
	assert.Equal(t, uint(0x800), regions[0].Size)
}

// stuckQuerier always reports the same zero-sized region
type stuckQuerier struct {
	calls int
}

func (s *stuckQuerier) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryRegion, error) {
	s.calls++
	return memory_map.MemoryRegion{Address: uint64(addr), State: memory_map.MemCommit, Protect: memory_map.PageReadWrite}, nil
}

func TestRegionsNeverStall(t *testing.T) {
	q := &stuckQuerier{}
	assert.Empty(t, Snapshot(q, 0x1000))
	assert.Equal(t, 1, q.calls)
}

// wrapQuerier reports a region that runs to the top of the address space
type wrapQuerier struct{}

func (wrapQuerier) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryRegion, error) {
	return memory_map.MemoryRegion{Address: uint64(addr), Size: ^uint(0), State: memory_map.MemFree}, nil
}

func TestRegionsStopOnWrap(t *testing.T) {
	assert.Empty(t, Snapshot(wrapQuerier{}, 0x1000))
}
