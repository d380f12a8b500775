package process_blob

import (
	"fmt"
	"os"
	"path/filepath"

	"memwalk/process"
	"memwalk/process/memory_map"
)

// LoadFile maps a raw memory dump at base as a single read-write region
func LoadFile(path string, base process.ProcessMemoryAddress) (*ProcessDump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("dump %s is empty", path)
	}
	if uint64(base)+uint64(len(data)) < uint64(base) {
		return nil, fmt.Errorf("dump of %d bytes does not fit at %s", len(data), base.ToString())
	}

	dump := NewProcessDump()
	dump.Name = filepath.Base(path)
	dump.Map(base, data, memory_map.PageReadWrite)
	return dump, nil
}
