//go:build windows

package main

import (
	"memwalk/process"
	"memwalk/process_windows"
)

func platform() (process.ProcessOpener, process.ModuleFinder, error) {
	helper := process_windows.NewHelper()
	return helper, helper, nil
}
