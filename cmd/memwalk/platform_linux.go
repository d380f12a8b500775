//go:build linux

package main

import (
	"memwalk/process"
	"memwalk/process_linux"
)

func platform() (process.ProcessOpener, process.ModuleFinder, error) {
	helper := process_linux.NewHelper()
	return helper, helper, nil
}
