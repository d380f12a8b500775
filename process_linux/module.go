//go:build linux

package process_linux

import (
	"fmt"
	"path/filepath"

	"memwalk/process"
	"memwalk/process/memory_map"
)

// FindModule finds the module name in the memory map of pid
func FindModule(pid process.ProcessID, name string) (process.ModuleInfo, error) {
	mm, err := memory_map.ReadMemoryMap(int(pid))
	if err != nil {
		return process.ModuleInfo{}, fmt.Errorf("failed to read memory map: %w", err)
	}

	base, end, path, ok := memory_map.ModuleRange(mm, name)
	if !ok {
		return process.ModuleInfo{}, fmt.Errorf("%w: %s in process %d", process.ErrModuleNotFound, name, pid)
	}

	return process.ModuleInfo{
		Name: filepath.Base(path),
		Path: path,
		Base: process.ProcessMemoryAddress(base),
		Size: process.ProcessMemorySize(end - base),
	}, nil
}
