package process

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID  ProcessID // Process ID
	Name string    // Executable name as reported by the OS
	Exe  string    // Path to the executable, empty when unavailable
}

// ModuleInfo describes a module (executable image or shared object) loaded in a process
type ModuleInfo struct {
	Name string               // Base name of the module
	Path string               // Full path, empty when unavailable
	Base ProcessMemoryAddress // Lowest mapped address of the module
	Size ProcessMemorySize    // Span from Base to the end of the module's last mapping
}
