// Package process provides interfaces and types for remote process memory access
package process

import "errors"

// Setup failures. These happen before any scanning and end the run.
var (
	// ErrProcessNotFound is returned when no running process matches the requested name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrProcessOpenFailed is returned when the process exists but cannot be opened,
	// usually because of insufficient rights or because it exited in between.
	ErrProcessOpenFailed = errors.New("process open failed")

	// ErrModuleNotFound is returned when the requested module is not loaded in the process.
	ErrModuleNotFound = errors.New("module not found")
)

// Scan-time conditions. None of these cross the scan coordinator.
var (
	// ErrRegionEnumerationEnded marks the end of the addressable range. It is not a failure.
	ErrRegionEnumerationEnded = errors.New("region enumeration ended")

	// ErrRegionReadFailed is returned when a region could not be copied in full.
	ErrRegionReadFailed = errors.New("region read failed")

	// ErrEmptyPattern is returned when a signature compiles to zero elements.
	ErrEmptyPattern = errors.New("empty pattern")
)

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	ErrInvalidReadSize = errors.New("invalid read size")
)
