package scan

import (
	"time"

	"memwalk/process"
)

// Phase names the step of a run an event belongs to
type Phase string

const (
	PhaseInit    Phase = "init"
	PhaseScan    Phase = "scan"
	PhaseFound   Phase = "found"
	PhaseRead    Phase = "read"
	PhaseTime    Phase = "time"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Severity ranks an event for renderers
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Event is a structured progress report. Rendering is up to the sink.
type Event struct {
	Phase      Phase
	Severity   Severity
	Message    string
	Address    process.ProcessMemoryAddress // valid when HasAddress
	HasAddress bool
	Elapsed    time.Duration // set on PhaseTime events
}

// EventSink receives events. Emit may be called from the scanning goroutine only.
type EventSink interface {
	Emit(Event)
}

// EventFunc adapts a function to EventSink
type EventFunc func(Event)

func (f EventFunc) Emit(e Event) {
	f(e)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event
var Discard EventSink = discard{}

// AddressEvent builds an event carrying an address
func AddressEvent(phase Phase, severity Severity, message string, addr process.ProcessMemoryAddress) Event {
	return Event{
		Phase:      phase,
		Severity:   severity,
		Message:    message,
		Address:    addr,
		HasAddress: true,
	}
}
