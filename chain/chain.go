// Package chain follows pointer chains through a remote address space.
package chain

import (
	"fmt"
	"strconv"
	"strings"

	"memwalk/process"
)

// Chain is an ordered list of signed byte offsets. Each step reads a pointer at
// current+offset and continues from the value read.
type Chain []int64

// String renders the chain as comma separated hex offsets
func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, off := range c {
		if off < 0 {
			parts[i] = fmt.Sprintf("-0x%X", uint64(-off))
		} else {
			parts[i] = fmt.Sprintf("0x%X", off)
		}
	}
	return strings.Join(parts, ",")
}

// ParseChain parses comma separated offsets, decimal or 0x-prefixed hex, optionally negative
func ParseChain(s string) (Chain, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chain{}, nil
	}

	var c Chain
	for _, part := range strings.Split(s, ",") {
		off, err := strconv.ParseInt(strings.TrimSpace(part), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", part, err)
		}
		c = append(c, off)
	}
	return c, nil
}

// Step records one dereference
type Step struct {
	Base    process.ProcessMemoryAddress // address the step started from
	Offset  int64
	Address process.ProcessMemoryAddress // Base+Offset, where the pointer was read
	Value   process.ProcessMemoryAddress // pointer read, zero when Err is set
	Err     error
}

// Resolver walks chains with a fixed pointer width
type Resolver struct {
	mem   process.MemoryReader
	width process.ProcessMemorySize
}

// NewResolver creates a resolver reading width-byte pointers; width 0 means 8
func NewResolver(mem process.MemoryReader, width process.ProcessMemorySize) *Resolver {
	if width == 0 {
		width = process.PointerSize
	}
	return &Resolver{mem: mem, width: width}
}

// Trace walks the chain from start and records every step. A failed read is
// recorded and yields zero as the next address; the walk never stops early.
func (r *Resolver) Trace(start process.ProcessMemoryAddress, offsets Chain) []Step {
	steps := make([]Step, 0, len(offsets))
	current := start
	for _, off := range offsets {
		addr := current.Add(off)
		value, err := process.ReadPointer(r.mem, addr, r.width)
		steps = append(steps, Step{
			Base:    current,
			Offset:  off,
			Address: addr,
			Value:   value,
			Err:     err,
		})
		current = value
	}
	return steps
}

// Resolve returns the address reached after the last step, start for an empty chain.
// The result is not validated, callers check it before using it.
func (r *Resolver) Resolve(start process.ProcessMemoryAddress, offsets Chain) process.ProcessMemoryAddress {
	return Final(start, r.Trace(start, offsets))
}

// Final returns the address a trace ends at
func Final(start process.ProcessMemoryAddress, steps []Step) process.ProcessMemoryAddress {
	if len(steps) == 0 {
		return start
	}
	return steps[len(steps)-1].Value
}

// Resolve walks offsets from start with 8-byte pointers
func Resolve(mem process.MemoryReader, start process.ProcessMemoryAddress, offsets Chain) process.ProcessMemoryAddress {
	return NewResolver(mem, process.PointerSize).Resolve(start, offsets)
}
