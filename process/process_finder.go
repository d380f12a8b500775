package process

// ProcessFinder resolves human readable names to running processes
type ProcessFinder interface {
	// FindProcessByName finds processes by their executable name, ignoring case
	FindProcessByName(name string) ([]ProcessInfo, error)
}

// ModuleFinder resolves loaded modules inside a process
type ModuleFinder interface {
	// FindModule returns the module named name loaded in pid, or ErrModuleNotFound
	FindModule(pid ProcessID, name string) (ModuleInfo, error)
}
