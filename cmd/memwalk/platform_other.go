//go:build !linux && !windows

package main

import (
	"fmt"
	"runtime"

	"memwalk/process"
)

func platform() (process.ProcessOpener, process.ModuleFinder, error) {
	return nil, nil, fmt.Errorf("live processes are not supported on %s, use the scan command", runtime.GOOS)
}
