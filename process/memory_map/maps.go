package memory_map

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseMaps parses the /proc/[pid]/maps format. Every listed mapping is committed.
func ParseMaps(r io.Reader) ([]MemoryRegion, error) {
	var regions []MemoryRegion
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		// Parse address range (e.g., "00400000-0040b000")
		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}

		startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil || endAddr <= startAddr {
			continue
		}

		protect := ProtectionFromPerms(fields[1])
		region := MemoryRegion{
			Address:           startAddr,
			Size:              uint(endAddr - startAddr),
			State:             MemCommit,
			Protect:           protect,
			AllocationProtect: protect,
		}
		if len(fields) > 5 {
			region.Path = strings.Join(fields[5:], " ")
		}

		regions = append(regions, region)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	Sort(regions)
	return regions, nil
}

// ModuleRange finds the mappings backed by a file whose base name matches name
// (case-insensitive) and returns the span from the lowest to the end of the highest.
func ModuleRange(regions []MemoryRegion, name string) (base, end uint64, path string, ok bool) {
	for _, r := range regions {
		if r.Path == "" || !strings.EqualFold(filepath.Base(r.Path), name) {
			continue
		}
		if !ok || r.Address < base {
			base = r.Address
			path = r.Path
		}
		if r.End() > end {
			end = r.End()
		}
		ok = true
	}
	return base, end, path, ok
}
