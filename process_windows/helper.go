//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"memwalk/process"

	"golang.org/x/sys/windows"
)

// WindowsProcessHelper opens processes and looks up their modules
type WindowsProcessHelper struct{}

var (
	_ process.ProcessOpener = (*WindowsProcessHelper)(nil)
	_ process.ModuleFinder  = (*WindowsProcessHelper)(nil)
)

// NewHelper creates a new WindowsProcessHelper
func NewHelper() *WindowsProcessHelper {
	return &WindowsProcessHelper{}
}

// OpenProcess opens pid for reading
func (h *WindowsProcessHelper) OpenProcess(pid process.ProcessID) (process.Process, error) {
	return NewWithPID(pid)
}

// FindModule walks a toolhelp module snapshot of pid
func (h *WindowsProcessHelper) FindModule(pid process.ProcessID, name string) (process.ModuleInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return process.ModuleInfo{}, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		moduleName := windows.UTF16ToString(entry.Module[:])
		if !strings.EqualFold(moduleName, name) {
			continue
		}
		return process.ModuleInfo{
			Name: moduleName,
			Path: windows.UTF16ToString(entry.ExePath[:]),
			Base: process.ProcessMemoryAddress(entry.ModBaseAddr),
			Size: process.ProcessMemorySize(entry.ModBaseSize),
		}, nil
	}

	if err != nil && !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return process.ModuleInfo{}, fmt.Errorf("module enumeration failed: %w", err)
	}
	return process.ModuleInfo{}, fmt.Errorf("%w: %s in process %d", process.ErrModuleNotFound, name, pid)
}
