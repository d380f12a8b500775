package scan

import (
	"fmt"

	"memwalk/pattern"
	"memwalk/process"
	"memwalk/process/memory_map"
)

// ScanRegion copies region in a single read and returns the absolute addresses
// where pat matches, ascending, at most limit of them when limit > 0.
// A failed or short read returns an error wrapping process.ErrRegionReadFailed.
func ScanRegion(mem process.MemoryReader, region memory_map.MemoryRegion, pat pattern.Pattern, limit int) ([]process.ProcessMemoryAddress, error) {
	if pat.IsEmpty() {
		return nil, process.ErrEmptyPattern
	}
	if region.Size == 0 || region.Size < uint(pat.Len()) {
		return nil, nil
	}

	base := process.ProcessMemoryAddress(region.Address)
	data, err := mem.ReadMemory(base, process.ProcessMemorySize(region.Size))
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %v", process.ErrRegionReadFailed, base.ToString(), err)
	}
	if uint(len(data)) < region.Size {
		return nil, fmt.Errorf("%w at %s: short read %d of %d bytes", process.ErrRegionReadFailed, base.ToString(), len(data), region.Size)
	}

	offsets := pat.FindAll(data, limit)
	if len(offsets) == 0 {
		return nil, nil
	}

	matches := make([]process.ProcessMemoryAddress, len(offsets))
	for i, offset := range offsets {
		matches[i] = base + process.ProcessMemoryAddress(offset)
	}
	return matches, nil
}
