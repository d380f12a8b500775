// Package pattern compiles array-of-bytes signatures and matches them against buffers.
//
// A Pattern is an ordered list of elements, each either a literal byte or a
// wildcard. Literal signatures use a sentinel byte (0x00) for wildcards, so a
// literal zero cannot be expressed in them. Hex signatures use "??" instead and
// treat "00" as a literal zero byte.
package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel is the byte that means "don't care" in literal signatures
const Sentinel byte = 0x00

// Pattern is a compiled signature. The zero value is the empty pattern.
type Pattern struct {
	values  []byte
	literal []bool
}

// Compile turns a literal signature into a Pattern, every Sentinel byte becoming a wildcard
func Compile(signature string) Pattern {
	return CompileBytes([]byte(signature), Sentinel)
}

// CompileBytes is Compile over raw bytes with an explicit sentinel
func CompileBytes(signature []byte, sentinel byte) Pattern {
	p := Pattern{
		values:  make([]byte, len(signature)),
		literal: make([]bool, len(signature)),
	}
	for i, b := range signature {
		if b == sentinel {
			continue
		}
		p.values[i] = b
		p.literal[i] = true
	}
	return p
}

// Literal builds a pattern without wildcards
func Literal(b []byte) Pattern {
	p := Pattern{
		values:  append([]byte(nil), b...),
		literal: make([]bool, len(b)),
	}
	for i := range p.literal {
		p.literal[i] = true
	}
	return p
}

// ParseHex parses hex bytes separated by spaces or commas, e.g. "48 8B ?? 05".
// "?" and "??" are wildcards.
func ParseHex(s string) (Pattern, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	p := Pattern{
		values:  make([]byte, 0, len(parts)),
		literal: make([]bool, 0, len(parts)),
	}
	for _, part := range parts {
		if part == "?" || part == "??" {
			p.values = append(p.values, 0)
			p.literal = append(p.literal, false)
			continue
		}

		val, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid hex byte %q", part)
		}
		p.values = append(p.values, byte(val))
		p.literal = append(p.literal, true)
	}

	return p, nil
}

// Len returns the number of elements
func (p Pattern) Len() int {
	return len(p.values)
}

// IsEmpty reports whether the pattern has no elements and so can never match
func (p Pattern) IsEmpty() bool {
	return len(p.values) == 0
}

// IsWildcard reports whether element i matches any byte
func (p Pattern) IsWildcard(i int) bool {
	return !p.literal[i]
}

// Value returns the byte of element i, zero for wildcards
func (p Pattern) Value(i int) byte {
	return p.values[i]
}

// Anchored reports whether the first element is a literal usable for fast rejection
func (p Pattern) Anchored() bool {
	return len(p.literal) > 0 && p.literal[0]
}

// Mask returns 0xFF for literal elements and 0x00 for wildcards
func (p Pattern) Mask() []byte {
	mask := make([]byte, len(p.literal))
	for i, lit := range p.literal {
		if lit {
			mask[i] = 0xFF
		}
	}
	return mask
}

// String renders the pattern in hex signature form
func (p Pattern) String() string {
	var sb strings.Builder
	for i := range p.values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if p.literal[i] {
			fmt.Fprintf(&sb, "%02X", p.values[i])
		} else {
			sb.WriteString("??")
		}
	}
	return sb.String()
}
