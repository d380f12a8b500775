// Package scan finds array-of-bytes patterns in the memory of a remote process.
package scan

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/panjf2000/ants/v2"

	"memwalk/pattern"
	"memwalk/process"
	"memwalk/process/memory_map"
)

// Mode selects how many matches a scan looks for
type Mode int

const (
	// FirstMatch stops at the lowest-addressed match
	FirstMatch Mode = iota
	// AllMatches collects matches up to Request.Cap
	AllMatches
)

func (m Mode) String() string {
	if m == AllMatches {
		return "all"
	}
	return "first"
}

// ParseMode parses "first" or "all"
func ParseMode(s string) (Mode, error) {
	switch s {
	case "first", "":
		return FirstMatch, nil
	case "all":
		return AllMatches, nil
	}
	return FirstMatch, fmt.Errorf("unknown scan mode %q", s)
}

// Strategy selects how regions are scheduled
type Strategy int

const (
	// Sequential scans one region at a time on the caller's goroutine and stops exactly at the cap
	Sequential Strategy = iota
	// Concurrent scans a region snapshot on a worker pool, the cap is a floor
	Concurrent
)

func (s Strategy) String() string {
	if s == Concurrent {
		return "concurrent"
	}
	return "sequential"
}

// ParseStrategy parses "sequential" or "concurrent"
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "sequential", "":
		return Sequential, nil
	case "concurrent", "parallel":
		return Concurrent, nil
	}
	return Sequential, fmt.Errorf("unknown scan strategy %q", s)
}

// Request describes one scan
type Request struct {
	Pattern  pattern.Pattern
	Mode     Mode
	Cap      int                          // AllMatches only, <= 0 means unlimited
	Start    process.ProcessMemoryAddress // first address queried, e.g. a module base
	Strategy Strategy
}

// limit is the number of matches after which no more work is started, 0 for none
func (r Request) limit() int {
	if r.Mode == FirstMatch {
		return 1
	}
	if r.Cap < 0 {
		return 0
	}
	return r.Cap
}

// Result is the outcome of a scan. Addresses are strictly ascending.
type Result struct {
	Addresses      []process.ProcessMemoryAddress
	RegionsScanned int
	RegionsSkipped int
	BytesScanned   uint64
	Elapsed        time.Duration
}

// First returns the lowest match
func (r Result) First() (process.ProcessMemoryAddress, bool) {
	if len(r.Addresses) == 0 {
		return 0, false
	}
	return r.Addresses[0], true
}

// Scanner runs scans against one target
type Scanner struct {
	mem    process.RemoteMemory
	log    *logger.Logger
	events EventSink
	maxdop int
}

// Option configures a Scanner
type Option func(*Scanner)

func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

func WithEvents(sink EventSink) Option {
	return func(s *Scanner) {
		if sink != nil {
			s.events = sink
		}
	}
}

// WithMaxDOP bounds the worker pool of the concurrent strategy
func WithMaxDOP(maxdop int) Option {
	return func(s *Scanner) {
		s.maxdop = maxdop
	}
}

// New creates a Scanner over mem
func New(mem process.RemoteMemory, options ...Option) *Scanner {
	s := &Scanner{
		mem:    mem,
		events: Discard,
		maxdop: runtime.NumCPU(),
	}

	for _, opt := range options {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scan"))
	}

	return s
}

// Scan runs req to completion and returns the sorted matches. Region failures
// are absorbed; an empty pattern returns an empty result without touching the target.
func (s *Scanner) Scan(req Request) Result {
	var res Result
	if req.Pattern.IsEmpty() {
		s.log.Debugln("Empty pattern, nothing to scan")
		return res
	}

	s.events.Emit(Event{Phase: PhaseScan, Severity: SeverityInfo, Message: "Starting memory scan..."})
	s.log.Infoln("Starting", req.Strategy.String(), "scan for pattern of length", req.Pattern.Len(), "from", req.Start.ToString())

	started := time.Now()
	switch req.Strategy {
	case Concurrent:
		s.scanConcurrent(req, &res)
	default:
		s.scanSequential(req, &res)
	}

	// completion order under the concurrent strategy is not deterministic
	slices.Sort(res.Addresses)
	res.Elapsed = time.Since(started)

	s.events.Emit(Event{Phase: PhaseTime, Severity: SeverityInfo, Message: "Scan completed", Elapsed: res.Elapsed})
	s.log.Infoln("Scan complete, found", len(res.Addresses), "matches in", res.RegionsScanned, "regions,", res.RegionsSkipped, "skipped")
	return res
}

func (s *Scanner) scanSequential(req Request, res *Result) {
	limit := req.limit()

	for region := range Regions(s.mem, req.Start) {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(res.Addresses)
		}

		matches, err := ScanRegion(s.mem, region, req.Pattern, remaining)
		if err != nil {
			s.log.Debugln("Skipping region", fmt.Sprintf("%x", region.Address), err)
			res.RegionsSkipped++
			continue
		}

		res.RegionsScanned++
		res.BytesScanned += uint64(region.Size)
		res.Addresses = append(res.Addresses, matches...)

		if limit > 0 && len(res.Addresses) >= limit {
			return
		}
	}
}

func (s *Scanner) scanConcurrent(req Request, res *Result) {
	regions := Snapshot(s.mem, req.Start)
	if len(regions) == 0 {
		return
	}

	maxdop := s.maxdop
	if maxdop <= 1 {
		s.log.Debugln("maxdop", maxdop, "requested, scanning sequentially")
		s.scanSnapshot(req, regions, res)
		return
	}

	// Limit maxdop to number of CPUs if it's too large
	if numCPU := runtime.NumCPU(); maxdop > numCPU {
		maxdop = numCPU
		s.log.Debugln("Limiting maxdop to number of CPUs:", maxdop)
	}

	pool, err := ants.NewPool(maxdop)
	if err != nil {
		s.log.Warn("Failed to create worker pool, scanning sequentially: ", err)
		s.scanSnapshot(req, regions, res)
		return
	}
	defer pool.Release()

	limit := req.limit()
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	collect := func(region memory_map.MemoryRegion, matches []process.ProcessMemoryAddress, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.RegionsSkipped++
			return
		}
		res.RegionsScanned++
		res.BytesScanned += uint64(region.Size)
		res.Addresses = append(res.Addresses, matches...)
	}

	reached := func() bool {
		if limit <= 0 {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(res.Addresses) >= limit
	}

	for _, region := range regions {
		// dispatched tasks always finish, the cap only stops new ones
		if reached() {
			break
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			matches, err := ScanRegion(s.mem, region, req.Pattern, limit)
			if err != nil {
				s.log.Debugln("Skipping region", fmt.Sprintf("%x", region.Address), err)
			}
			collect(region, matches, err)
		})
		if err != nil {
			wg.Done()
			s.log.Debugln("Failed to dispatch region", fmt.Sprintf("%x", region.Address), err)
			collect(region, nil, err)
		}
	}

	wg.Wait()
}

// scanSnapshot is the sequential loop over an already captured region list
func (s *Scanner) scanSnapshot(req Request, regions []memory_map.MemoryRegion, res *Result) {
	limit := req.limit()
	for _, region := range regions {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(res.Addresses)
		}

		matches, err := ScanRegion(s.mem, region, req.Pattern, remaining)
		if err != nil {
			res.RegionsSkipped++
			continue
		}
		res.RegionsScanned++
		res.BytesScanned += uint64(region.Size)
		res.Addresses = append(res.Addresses, matches...)
		if limit > 0 && len(res.Addresses) >= limit {
			return
		}
	}
}

// Scan runs a sequential scan of mem from start with a default Scanner
func Scan(mem process.RemoteMemory, start process.ProcessMemoryAddress, pat pattern.Pattern, mode Mode, limit int) Result {
	return New(mem).Scan(Request{Pattern: pat, Mode: mode, Cap: limit, Start: start})
}
