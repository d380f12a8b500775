package memory_map

import (
	"fmt"
	"sort"
)

// RegionState is the commit state of a region, using the Windows MEM_* values
type RegionState uint32

const (
	MemCommit  RegionState = 0x1000
	MemReserve RegionState = 0x2000
	MemFree    RegionState = 0x10000
)

func (s RegionState) String() string {
	switch s {
	case MemCommit:
		return "commit"
	case MemReserve:
		return "reserve"
	case MemFree:
		return "free"
	}
	return fmt.Sprintf("state(%#x)", uint32(s))
}

// Protection holds page protection flags, using the Windows PAGE_* values
type Protection uint32

const (
	PageNoAccess         Protection = 0x01
	PageReadOnly         Protection = 0x02
	PageReadWrite        Protection = 0x04
	PageWriteCopy        Protection = 0x08
	PageExecute          Protection = 0x10
	PageExecuteRead      Protection = 0x20
	PageExecuteReadWrite Protection = 0x40
	PageExecuteWriteCopy Protection = 0x80
	PageGuard            Protection = 0x100
)

// String renders the protection as rwx permissions
func (p Protection) String() string {
	perms := []byte("---")
	switch p &^ PageGuard {
	case PageReadOnly:
		perms[0] = 'r'
	case PageReadWrite, PageWriteCopy:
		perms[0], perms[1] = 'r', 'w'
	case PageExecute:
		perms[2] = 'x'
	case PageExecuteRead:
		perms[0], perms[2] = 'r', 'x'
	case PageExecuteReadWrite, PageExecuteWriteCopy:
		perms[0], perms[1], perms[2] = 'r', 'w', 'x'
	}
	if p&PageGuard != 0 {
		return string(perms) + "g"
	}
	return string(perms)
}

// MemoryRegion represents a contiguous range of a process's address space
// with uniform commit state and protection
type MemoryRegion struct {
	Address           uint64      // The starting address of the memory region
	Size              uint        // The size of the memory region in bytes
	State             RegionState // Commit state
	Protect           Protection  // Current protection
	AllocationProtect Protection  // Protection the originating allocation was created with
	Path              string      // Backing file, when the OS reports one
}

// End returns the first address past the region
func (r MemoryRegion) End() uint64 {
	return r.Address + uint64(r.Size)
}

func (r MemoryRegion) Contains(addr uint64) bool {
	return addr >= r.Address && addr < r.End()
}

func (r MemoryRegion) IsCommitted() bool {
	return r.State == MemCommit
}

func (r MemoryRegion) IsReadable() bool {
	switch r.Protect {
	case PageReadOnly, PageReadWrite, PageWriteCopy, PageExecuteRead, PageExecuteReadWrite, PageExecuteWriteCopy:
		return true
	}
	return false
}

func (r MemoryRegion) IsWritable() bool {
	switch r.Protect {
	case PageReadWrite, PageWriteCopy, PageExecuteReadWrite, PageExecuteWriteCopy:
		return true
	}
	return false
}

// IsScannable reports whether the scanner reads this region: committed, and
// protected exactly execute-read, execute-read-write, read-write or read-only.
// Guard pages and copy-on-write views are left alone.
func (r MemoryRegion) IsScannable() bool {
	if r.State != MemCommit {
		return false
	}
	switch r.Protect {
	case PageExecuteRead, PageExecuteReadWrite, PageReadWrite, PageReadOnly:
		return true
	}
	return false
}

// String returns a string representation of the memory region
func (r MemoryRegion) String() string {
	s := fmt.Sprintf("Address: %x, Size: %d, State: %s, Perms: %s", r.Address, r.Size, r.State, r.Protect)
	if r.Path != "" {
		s += ", Path: " + r.Path
	}
	return s
}

// ProtectionFromPerms converts a /proc maps permission string ("r-xp") to protection flags
func ProtectionFromPerms(perms string) Protection {
	has := func(i int, c byte) bool {
		return len(perms) > i && perms[i] == c
	}

	r, w, x := has(0, 'r'), has(1, 'w'), has(2, 'x')
	switch {
	case r && w && x:
		return PageExecuteReadWrite
	case r && x:
		return PageExecuteRead
	case r && w:
		return PageReadWrite
	case r:
		return PageReadOnly
	case x:
		return PageExecute
	}
	// write-only mappings cannot be read back either
	return PageNoAccess
}

// Sort orders regions by address, Find and Query depend on it
func Sort(regions []MemoryRegion) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Address < regions[j].Address
	})
}

// Find returns the region containing addr. regions must be sorted.
func Find(regions []MemoryRegion, addr uint64) *MemoryRegion {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].End() > addr
	})
	if i < len(regions) && regions[i].Address <= addr {
		return &regions[i]
	}

	return nil
}

// Query answers a region query over a sorted region list the way VirtualQueryEx does.
// An address inside a region returns that region. An address in a gap returns a free
// region spanning up to the next region. false means addr is past the last region.
func Query(regions []MemoryRegion, addr uint64) (MemoryRegion, bool) {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].End() > addr
	})
	if i >= len(regions) {
		return MemoryRegion{}, false
	}

	if regions[i].Address <= addr {
		return regions[i], true
	}

	return MemoryRegion{
		Address: addr,
		Size:    uint(regions[i].Address - addr),
		State:   MemFree,
		Protect: PageNoAccess,
	}, true
}
