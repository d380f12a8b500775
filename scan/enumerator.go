package scan

import (
	"iter"

	"memwalk/process"
	"memwalk/process/memory_map"
)

// Regions walks the address space from start and yields the scannable regions.
//
// The cursor moves to base+size after every query, whether or not the region
// passed the filter, and the walk ends at the first failed query. A region that
// does not move the cursor forward (zero size, wrap around) also ends the walk,
// so no address is queried twice. Ranging over the sequence again restarts it.
func Regions(mem process.RegionQuerier, start process.ProcessMemoryAddress) iter.Seq[memory_map.MemoryRegion] {
	return func(yield func(memory_map.MemoryRegion) bool) {
		cursor := uint64(start)
		for {
			region, err := mem.QueryRegion(process.ProcessMemoryAddress(cursor))
			if err != nil {
				return
			}

			next := region.End()
			if next <= cursor {
				return
			}

			// a region reported below the cursor is clipped so nothing is yielded twice
			if region.Address < cursor {
				region.Size = uint(next - cursor)
				region.Address = cursor
			}
			cursor = next

			if !region.IsScannable() {
				continue
			}
			if !yield(region) {
				return
			}
		}
	}
}

// Snapshot materializes Regions
func Snapshot(mem process.RegionQuerier, start process.ProcessMemoryAddress) []memory_map.MemoryRegion {
	var regions []memory_map.MemoryRegion
	for region := range Regions(mem, start) {
		regions = append(regions, region)
	}
	return regions
}
