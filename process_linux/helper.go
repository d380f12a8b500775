//go:build linux

package process_linux

import (
	"memwalk/process"
)

// LinuxProcessHelper opens processes and looks up their modules
type LinuxProcessHelper struct{}

var (
	_ process.ProcessOpener = (*LinuxProcessHelper)(nil)
	_ process.ModuleFinder  = (*LinuxProcessHelper)(nil)
)

// NewHelper creates a new LinuxProcessHelper
func NewHelper() *LinuxProcessHelper {
	return &LinuxProcessHelper{}
}

// OpenProcess opens pid for reading
func (h *LinuxProcessHelper) OpenProcess(pid process.ProcessID) (process.Process, error) {
	return NewWithPID(pid)
}

// FindModule looks the module up in /proc/[pid]/maps
func (h *LinuxProcessHelper) FindModule(pid process.ProcessID, name string) (process.ModuleInfo, error) {
	return FindModule(pid, name)
}
