package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"

	"memwalk/chain"
)

// FormatFunc colours a cell value
type FormatFunc func(value string) string

// Column defines a column's properties
type Column struct {
	Header string
	Format FormatFunc // optional, applied when rendering
}

// Table lays rows out in padded columns. Empty cells render as "-".
type Table struct {
	columns []Column
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given columns
func NewTable(cols ...Column) *Table {
	t := &Table{
		columns: cols,
		widths:  make([]int, len(cols)),
	}
	for i, col := range cols {
		t.widths[i] = len(col.Header)
	}
	return t
}

// AddRow adds a row, missing trailing cells are blank
func (t *Table) AddRow(data ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(data) && data[i] != "" {
			row[i] = data[i]
		} else {
			row[i] = "-"
		}
		t.widths[i] = max(t.widths[i], visibleLength(row[i]))
	}
	t.rows = append(t.rows, row)
}

// Render writes the table to the given writer
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	sep := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = pad(col.Header, t.widths[i])
		sep[i] = strings.Repeat("-", t.widths[i])
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(headers, "  "), " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(sep, "  ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		formatted := make([]string, len(row))
		for i, val := range row {
			if t.columns[i].Format != nil {
				val = t.columns[i].Format(val)
			}
			formatted[i] = pad(val, t.widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(formatted, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// pad pads a string to the given visible width
func pad(s string, width int) string {
	n := visibleLength(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// visibleLength counts runes outside ANSI escape sequences
func visibleLength(s string) int {
	length := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			length++
		}
	}
	return length
}

// StepsTable tabulates a chain trace; label names hop i
func (r *Renderer) StepsTable(steps []chain.Step, label func(i int) string) *Table {
	status := func(s string) string { return s }
	if r.color {
		status = func(s string) string {
			if s == "ok" {
				return coloransi.Foreground(coloransi.Green, s)
			}
			return coloransi.Foreground(coloransi.Red, s)
		}
	}

	t := NewTable(
		Column{Header: "STEP"},
		Column{Header: "READ AT"},
		Column{Header: "OFFSET"},
		Column{Header: "VALUE"},
		Column{Header: "STATUS", Format: status},
	)
	for i, step := range steps {
		state := "ok"
		if step.Err != nil {
			state = "failed"
		}
		t.AddRow(label(i), step.Address.ToString(), chain.Chain{step.Offset}.String(), step.Value.ToString(), state)
	}
	return t
}

// PrintTable renders t under the renderer's lock
func (r *Renderer) PrintTable(t *Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return t.Render(r.w)
}
