package process

import (
	"memwalk/process/memory_map"
)

// RegionQuerier answers address space queries the way VirtualQueryEx does:
// the region containing addr, or the free gap starting at addr.
type RegionQuerier interface {
	// QueryRegion returns the region at addr, or ErrRegionEnumerationEnded past the last one
	QueryRegion(addr ProcessMemoryAddress) (memory_map.MemoryRegion, error)
}

// MemoryReader copies bytes out of a remote address space
type MemoryReader interface {
	// ReadMemory reads exactly size bytes at addr; short reads are errors
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// RemoteMemory is everything the scan engine needs from a target
type RemoteMemory interface {
	MemoryReader
	RegionQuerier
}

// MemoryMapper is implemented by targets that keep a full region list
type MemoryMapper interface {
	GetMemoryMap() ([]memory_map.MemoryRegion, error)
}

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	RemoteMemory
}

// ProcessOpener produces opened processes
type ProcessOpener interface {
	// OpenProcess opens pid for reading, failures wrap ErrProcessOpenFailed
	OpenProcess(pid ProcessID) (Process, error)
}
