// Package console renders scan events as status lines
package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"golang.org/x/term"

	"memwalk/scan"
)

// Renderer writes one "[phase] message" line per event
type Renderer struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	verbose bool
}

var _ scan.EventSink = (*Renderer)(nil)

// New creates a Renderer. Debug events are only shown when verbose is set.
func New(w io.Writer, color, verbose bool) *Renderer {
	return &Renderer{w: w, color: color, verbose: verbose}
}

// ColorEnabled reports whether output to f should be coloured
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func severityColor(s scan.Severity) coloransi.ColorCode {
	switch s {
	case scan.SeverityDebug:
		return coloransi.BrightBlack
	case scan.SeveritySuccess:
		return coloransi.Green
	case scan.SeverityWarning:
		return coloransi.Yellow
	case scan.SeverityError:
		return coloransi.Red
	}
	return coloransi.Cyan
}

// FormatDuration renders d as milliseconds and seconds
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fms (%.3fs)", float64(d.Microseconds())/1000.0, d.Seconds())
}

// Format renders e without a trailing newline
func (r *Renderer) Format(e scan.Event) string {
	tag := "[" + string(e.Phase) + "]"
	if r.color {
		tag = coloransi.Foreground(severityColor(e.Severity), tag)
	}

	line := tag + " " + e.Message
	if e.HasAddress {
		line += ": " + e.Address.ToString()
	}
	if e.Phase == scan.PhaseTime {
		line += " in " + FormatDuration(e.Elapsed)
	}
	return line
}

// Emit implements scan.EventSink
func (r *Renderer) Emit(e scan.Event) {
	if e.Severity == scan.SeverityDebug && !r.verbose {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, r.Format(e))
}

// Println writes raw text, used for dumps and tables between events
func (r *Renderer) Println(a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, a...)
}

// Color reports whether the renderer emits ANSI colours
func (r *Renderer) Color() bool {
	return r.color
}
