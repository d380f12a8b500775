package process

import (
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

// ToString renders the address as 0x followed by sixteen upper-case hex digits.
// Scripts consume this format, keep it stable.
func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%016X", uint64(pma))
}

func (pma ProcessMemoryAddress) String() string {
	return pma.ToString()
}

// Add applies a signed byte offset, wrapping like the target's pointer arithmetic.
func (pma ProcessMemoryAddress) Add(offset int64) ProcessMemoryAddress {
	return pma + ProcessMemoryAddress(uint64(offset))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}
