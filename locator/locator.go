// Package locator finds a target process, scans it for a signature and walks
// the pointer chain from the first match.
package locator

import (
	"errors"
	"fmt"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"memwalk/chain"
	"memwalk/offsets"
	"memwalk/process"
	"memwalk/scan"
)

// Locator wires the setup collaborators to the scan engine
type Locator struct {
	finder  process.ProcessFinder
	opener  process.ProcessOpener
	modules process.ModuleFinder
	events  scan.EventSink
	log     *logger.Logger
}

// Option configures a Locator
type Option func(*Locator)

func WithEvents(sink scan.EventSink) Option {
	return func(l *Locator) {
		if sink != nil {
			l.events = sink
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(l *Locator) {
		l.log = log
	}
}

// New creates a Locator
func New(finder process.ProcessFinder, opener process.ProcessOpener, modules process.ModuleFinder, options ...Option) *Locator {
	l := &Locator{
		finder:  finder,
		opener:  opener,
		modules: modules,
		events:  scan.Discard,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.ColorOrange, "locator"))
	}
	return l
}

// Options tunes a run
type Options struct {
	Strategy     scan.Strategy
	MaxDOP       int
	FromZero     bool                      // scan from address 0 instead of the module base
	PointerWidth process.ProcessMemorySize // 0 means 8

	// Inspect, when set, is called with the open target after the chain is
	// resolved and before the process is closed
	Inspect func(mem process.RemoteMemory, report Report)
}

// Report is the outcome of a run
type Report struct {
	Target  offsets.Target
	PID     process.ProcessID
	Module  process.ModuleInfo
	Result  scan.Result
	Match   process.ProcessMemoryAddress // first match, valid when Found
	Steps   []chain.Step
	Final   process.ProcessMemoryAddress // address after the last step
	Found   bool
	Elapsed time.Duration
}

// setupError makes sure err carries sentinel, keeping the original message
func setupError(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func (l *Locator) emit(phase scan.Phase, severity scan.Severity, format string, a ...any) {
	l.events.Emit(scan.Event{Phase: phase, Severity: severity, Message: fmt.Sprintf(format, a...)})
}

func (l *Locator) fail(err error, format string, a ...any) error {
	l.emit(scan.PhaseError, scan.SeverityError, format, a...)
	l.log.Warn(err)
	return err
}

// Locate runs the full sequence against a live process. Setup failures
// (process, handle, module) are returned as errors wrapping the matching
// process sentinel. A run that finds no match returns a report with Found unset.
func (l *Locator) Locate(target offsets.Target, opts Options) (Report, error) {
	report := Report{Target: target}

	moduleName := target.Module
	if moduleName == "" {
		moduleName = target.Process
	}

	l.emit(scan.PhaseInit, scan.SeverityInfo, "Searching for %s process...", target.Process)
	procs, err := l.finder.FindProcessByName(target.Process)
	if err == nil && len(procs) == 0 {
		err = fmt.Errorf("no process named %s", target.Process)
	}
	if err != nil {
		return report, l.fail(setupError(process.ErrProcessNotFound, err), "Failed to find %s process", target.Process)
	}
	if len(procs) > 1 {
		l.log.Debugln(len(procs), "processes named", target.Process, "using the first")
	}
	report.PID = procs[0].PID
	l.emit(scan.PhaseSuccess, scan.SeveritySuccess, "Found %s process ID: %d", target.Process, report.PID)

	l.emit(scan.PhaseInit, scan.SeverityInfo, "Acquiring process handle...")
	proc, err := l.opener.OpenProcess(report.PID)
	if err != nil {
		return report, l.fail(setupError(process.ErrProcessOpenFailed, err), "Failed to open process")
	}
	defer proc.Close()
	l.emit(scan.PhaseSuccess, scan.SeveritySuccess, "Process handle acquired")

	l.emit(scan.PhaseInit, scan.SeverityInfo, "Getting base address...")
	module, err := l.modules.FindModule(report.PID, moduleName)
	if err != nil {
		return report, l.fail(setupError(process.ErrModuleNotFound, err), "Failed to get base address")
	}
	report.Module = module
	l.events.Emit(scan.AddressEvent(scan.PhaseSuccess, scan.SeveritySuccess, "Base address", module.Base))

	start := module.Base
	if opts.FromZero {
		start = 0
	}

	run, err := l.Run(proc, start, target, opts)
	if err != nil {
		return report, err
	}
	run.PID = report.PID
	run.Module = report.Module

	if opts.Inspect != nil {
		opts.Inspect(proc, run)
	}
	return run, nil
}

// Run scans mem from start and resolves the target's chain from the first
// match. Only an invalid target is an error.
func (l *Locator) Run(mem process.RemoteMemory, start process.ProcessMemoryAddress, target offsets.Target, opts Options) (Report, error) {
	report := Report{Target: target}
	started := time.Now()

	pat, err := target.Pattern()
	if err != nil {
		return report, l.fail(err, "Invalid signature for %s", target.Name)
	}
	mode, err := target.ScanMode()
	if err != nil {
		return report, l.fail(err, "Invalid scan mode for %s", target.Name)
	}

	scanOptions := []scan.Option{scan.WithEvents(l.events)}
	if opts.MaxDOP > 0 {
		scanOptions = append(scanOptions, scan.WithMaxDOP(opts.MaxDOP))
	}
	scanner := scan.New(mem, scanOptions...)
	report.Result = scanner.Scan(scan.Request{
		Pattern:  pat,
		Mode:     mode,
		Cap:      target.Cap,
		Start:    start,
		Strategy: opts.Strategy,
	})

	match, ok := report.Result.First()
	if !ok {
		l.emit(scan.PhaseError, scan.SeverityError, "Failed to find %s pattern", target.Name)
		report.Elapsed = time.Since(started)
		return report, nil
	}
	report.Found = true
	report.Match = match

	for _, addr := range report.Result.Addresses {
		l.events.Emit(scan.AddressEvent(scan.PhaseFound, scan.SeveritySuccess, target.Name+" pattern at", addr))
	}

	resolver := chain.NewResolver(mem, opts.PointerWidth)
	report.Steps = resolver.Trace(match, target.Offsets())
	report.Final = chain.Final(match, report.Steps)

	for i, step := range report.Steps {
		e := scan.AddressEvent(scan.PhaseRead, scan.SeverityInfo, target.Label(i)+" address", step.Value)
		if step.Err != nil {
			e.Severity = scan.SeverityWarning
			e.Message = fmt.Sprintf("%s address (read at %s failed)", target.Label(i), step.Address.ToString())
			l.log.Debugln("chain step", i, "failed:", step.Err)
		}
		l.events.Emit(e)
	}

	report.Elapsed = time.Since(started)
	l.emit(scan.PhaseSuccess, scan.SeveritySuccess, "Scan completed successfully!")
	l.events.Emit(scan.Event{Phase: scan.PhaseTime, Severity: scan.SeverityInfo, Message: "Operation completed", Elapsed: report.Elapsed})
	return report, nil
}
