// Package process_finder locates running processes by executable name
package process_finder

import (
	"fmt"
	"strings"

	"memwalk/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	psprocess "github.com/shirou/gopsutil/v4/process"
)

// candidate is a running process whose name and path are resolved on demand
type candidate struct {
	pid  int32
	name func() (string, error)
	exe  func() (string, error)
}

// Finder implements process.ProcessFinder on top of gopsutil
type Finder struct {
	log  *logger.Logger
	list func() ([]candidate, error)
}

var _ process.ProcessFinder = (*Finder)(nil)

// New creates a Finder over the processes of the local system
func New() *Finder {
	return &Finder{
		log:  logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.ColorOrange, "process-finder")),
		list: systemProcesses,
	}
}

func systemProcesses() ([]candidate, error) {
	procs, err := psprocess.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]candidate, 0, len(procs))
	for _, p := range procs {
		out = append(out, candidate{pid: p.Pid, name: p.Name, exe: p.Exe})
	}
	return out, nil
}

// FindProcessByName returns every process whose executable name equals name,
// ignoring case. Processes whose name cannot be read are skipped.
func (f *Finder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	candidates, err := f.list()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	var found []process.ProcessInfo
	for _, c := range candidates {
		procName, err := c.name()
		if err != nil {
			continue
		}
		if !strings.EqualFold(procName, name) {
			continue
		}
		info := process.ProcessInfo{PID: process.ProcessID(c.pid), Name: procName}
		if c.exe != nil {
			if exe, err := c.exe(); err == nil {
				info.Exe = exe
			}
		}
		found = append(found, info)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", process.ErrProcessNotFound, name)
	}

	f.log.Debugln("found", len(found), "process(es) named", name)
	return found, nil
}
