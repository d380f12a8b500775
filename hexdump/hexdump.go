// Package hexdump renders memory around scan matches
package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode"

	"memwalk/pattern"
	"memwalk/process"
	"memwalk/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options defines options for customizing the hexdump output
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartAddress is the address of the first byte of data
	StartAddress uint64

	// Color enables ANSI colors
	Color bool

	// Match marks a pattern occurrence to highlight, nil for none
	Match *Match

	// Regions enables the pointer preview: the first two qwords of a line are
	// shown when they point into one of these regions
	Regions []memory_map.MemoryRegion

	OffsetColor       coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ZeroColor         coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
	MatchColor        coloransi.ColorCode
	WildcardColor     coloransi.ColorCode
	PointerColor      coloransi.ColorCode
}

// Match is a pattern occurrence at Offset bytes into the dumped data
type Match struct {
	Offset  int
	Pattern pattern.Pattern
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() Options {
	return Options{
		BytesPerLine:      16,
		Color:             true,
		OffsetColor:       coloransi.Cyan,
		HexColor:          coloransi.Green,
		ZeroColor:         coloransi.BrightBlack,
		ASCIIColor:        coloransi.White,
		NonPrintableColor: coloransi.Red,
		MatchColor:        coloransi.Yellow,
		WildcardColor:     coloransi.Magenta,
		PointerColor:      coloransi.Yellow,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], offset, options)
	}
}

// byteClass tells how a byte relates to the highlighted match
type byteClass int

const (
	classPlain byteClass = iota
	classMatch
	classWildcard
)

func (o Options) classify(pos int) byteClass {
	if o.Match == nil {
		return classPlain
	}
	i := pos - o.Match.Offset
	if i < 0 || i >= o.Match.Pattern.Len() {
		return classPlain
	}
	if o.Match.Pattern.IsWildcard(i) {
		return classWildcard
	}
	return classMatch
}

func (o Options) paint(fg coloransi.ColorCode, s string) string {
	if !o.Color {
		return s
	}
	return coloransi.Foreground(fg, s)
}

func (o Options) highlight(fg coloransi.ColorCode, s string) string {
	if !o.Color {
		return s
	}
	return coloransi.Color(coloransi.Black, fg, s)
}

// formatLine formats a single line; pos is the index of line[0] in the full data
func formatLine(writer io.Writer, line []byte, pos int, options Options) {
	addr := options.StartAddress + uint64(pos)
	fmt.Fprint(writer, options.paint(options.OffsetColor, fmt.Sprintf("%016x", addr)), "  ")

	half := options.BytesPerLine / 2
	for i := 0; i < options.BytesPerLine; i++ {
		if i > 0 {
			fmt.Fprint(writer, " ")
		}
		if options.BytesPerLine >= 8 && i == half {
			fmt.Fprint(writer, "| ")
		}
		if i >= len(line) {
			// keep the ASCII column aligned on short lines
			fmt.Fprint(writer, "  ")
			continue
		}
		fmt.Fprint(writer, formatHex(line[i], options.classify(pos+i), options))
	}

	fmt.Fprint(writer, " | ")
	for i, b := range line {
		fmt.Fprint(writer, formatASCII(b, options.classify(pos+i), options))
	}

	if len(options.Regions) > 0 {
		var ptrs []string
		for i := 0; i+8 <= len(line) && i <= 8; i += 8 {
			ptr := binary.LittleEndian.Uint64(line[i:])
			if memory_map.Find(options.Regions, ptr) != nil {
				ptrs = append(ptrs, options.paint(options.PointerColor, fmt.Sprintf("0x%x", ptr)))
			}
		}
		if len(ptrs) > 0 {
			fmt.Fprint(writer, " | ", strings.Join(ptrs, " "))
		}
	}

	fmt.Fprintln(writer)
}

func formatHex(b byte, class byteClass, options Options) string {
	hexValue := fmt.Sprintf("%02x", b)
	switch {
	case class == classMatch:
		return options.highlight(options.MatchColor, hexValue)
	case class == classWildcard:
		return options.highlight(options.WildcardColor, hexValue)
	case b == 0:
		return options.paint(options.ZeroColor, hexValue)
	}
	return options.paint(options.HexColor, hexValue)
}

func formatASCII(b byte, class byteClass, options Options) string {
	c := rune(b)
	s := "."
	if b < 0x80 && unicode.IsPrint(c) {
		s = string(c)
	}
	switch {
	case class == classMatch:
		return options.highlight(options.MatchColor, s)
	case class == classWildcard:
		return options.highlight(options.WildcardColor, s)
	case b == 0:
		return options.paint(options.ZeroColor, s)
	case s == ".":
		return options.paint(options.NonPrintableColor, s)
	}
	return options.paint(options.ASCIIColor, s)
}

// MatchContext reads up to radius bytes on each side of a match of length
// bytes at addr, starting on a 16 byte boundary. When the window cannot be
// read it falls back to the match bytes alone.
func MatchContext(mem process.MemoryReader, addr process.ProcessMemoryAddress, length, radius int) ([]byte, process.ProcessMemoryAddress, error) {
	var start process.ProcessMemoryAddress
	if uint64(addr) >= uint64(radius) {
		start = addr - process.ProcessMemoryAddress(radius)
	}
	start &^= 0xF

	size := uint64(addr-start) + uint64(length) + uint64(radius)
	data, err := mem.ReadMemory(start, process.ProcessMemorySize(size))
	if err == nil && uint64(len(data)) == size {
		return data, start, nil
	}

	data, err = mem.ReadMemory(addr, process.ProcessMemorySize(length))
	if err != nil {
		return nil, addr, err
	}
	return data, addr, nil
}
