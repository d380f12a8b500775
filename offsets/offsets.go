// Package offsets loads the table of signatures and pointer chains per target build.
package offsets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"memwalk/chain"
	"memwalk/pattern"
	"memwalk/scan"
)

//go:embed default.yaml
var defaultTable []byte

var ErrTargetNotFound = errors.New("target not found in offset table")

// Offset is a chain offset that accepts decimal or 0x-prefixed hex in YAML, optionally negative
type Offset int64

func (o *Offset) UnmarshalYAML(value *yaml.Node) error {
	v, err := strconv.ParseInt(strings.TrimSpace(value.Value), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid offset %q", value.Line, value.Value)
	}
	*o = Offset(v)
	return nil
}

// Target is one entry of the table
type Target struct {
	Name         string   `yaml:"name"`
	Build        string   `yaml:"build"`
	Process      string   `yaml:"process"`
	Module       string   `yaml:"module"`
	Signature    string   `yaml:"signature"`
	HexSignature string   `yaml:"hex_signature"`
	Mode         string   `yaml:"mode"`
	Cap          int      `yaml:"cap"`
	Chain        []Offset `yaml:"chain"`
	Labels       []string `yaml:"labels"`
}

// Pattern compiles the target's signature, the hex form wins when both are set
func (t Target) Pattern() (pattern.Pattern, error) {
	if t.HexSignature != "" {
		return pattern.ParseHex(t.HexSignature)
	}
	return pattern.Compile(t.Signature), nil
}

// ScanMode parses Mode
func (t Target) ScanMode() (scan.Mode, error) {
	return scan.ParseMode(t.Mode)
}

// Offsets returns the chain as chain.Chain
func (t Target) Offsets() chain.Chain {
	c := make(chain.Chain, len(t.Chain))
	for i, off := range t.Chain {
		c[i] = int64(off)
	}
	return c
}

// Label names hop i of the chain
func (t Target) Label(i int) string {
	if i < len(t.Labels) && t.Labels[i] != "" {
		return t.Labels[i]
	}
	return fmt.Sprintf("Step %d", i+1)
}

// Validate checks that the target can be scanned
func (t Target) Validate() error {
	if t.Name == "" {
		return errors.New("target without name")
	}
	if t.Signature == "" && t.HexSignature == "" {
		return fmt.Errorf("target %s: no signature", t.Name)
	}
	if _, err := t.Pattern(); err != nil {
		return fmt.Errorf("target %s: %w", t.Name, err)
	}
	if _, err := t.ScanMode(); err != nil {
		return fmt.Errorf("target %s: %w", t.Name, err)
	}
	return nil
}

// Table holds every known target
type Table struct {
	Targets []Target `yaml:"targets"`
}

// Parse decodes and validates a table
func Parse(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse offset table: %w", err)
	}
	for _, t := range table.Targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return &table, nil
}

// Load reads a table from path
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read offset table: %w", err)
	}
	return Parse(data)
}

// Default returns the built in table
func Default() *Table {
	table, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("built in offset table: %v", err))
	}
	return table
}

// Lookup finds a target by name and build. An empty build selects the
// "default" build, or the first entry for the name when there is none.
func (t *Table) Lookup(name, build string) (Target, error) {
	var fallback *Target
	for i := range t.Targets {
		target := &t.Targets[i]
		if !strings.EqualFold(target.Name, name) {
			continue
		}
		if build != "" {
			if target.Build == build {
				return *target, nil
			}
			continue
		}
		if target.Build == "default" {
			return *target, nil
		}
		if fallback == nil {
			fallback = target
		}
	}

	if fallback != nil {
		return *fallback, nil
	}
	if build != "" {
		return Target{}, fmt.Errorf("%w: %s build %s", ErrTargetNotFound, name, build)
	}
	return Target{}, fmt.Errorf("%w: %s", ErrTargetNotFound, name)
}
