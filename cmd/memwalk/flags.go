package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"

	"memwalk/chain"
	"memwalk/locator"
	"memwalk/offsets"
	"memwalk/scan"
)

// TableFlags selects the offset table
type TableFlags struct {
	Config string
}

// AddFlags adds the table flags to a FlagSet.
func (f *TableFlags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.Config, "config", "", "Offset table YAML file (default: built-in table)")
}

// Table loads the selected table
func (f *TableFlags) Table() (*offsets.Table, error) {
	if f.Config == "" {
		return offsets.Default(), nil
	}
	return offsets.Load(f.Config)
}

// TargetFlags pick a table entry and override its fields
type TargetFlags struct {
	TableFlags

	Target    string
	Build     string
	Process   string
	Module    string
	Signature string
	Hex       string
	Chain     string
	All       bool
	Cap       int
	Strategy  string
	MaxDOP    int
	FromZero  bool
	Context   int
}

// AddFlags adds the target and scan flags to a FlagSet.
func (f *TargetFlags) AddFlags(flags *pflag.FlagSet) {
	f.TableFlags.AddFlags(flags)
	flags.StringVarP(&f.Target, "target", "t", "roblox", "Offset table entry")
	flags.StringVarP(&f.Build, "build", "b", "", "Target build (default: the entry marked default)")
	flags.StringVar(&f.Process, "process", "", "Process executable name")
	flags.StringVar(&f.Module, "module", "", "Module the scan starts at")
	flags.StringVarP(&f.Signature, "signature", "s", "", "Literal signature text")
	flags.StringVar(&f.Hex, "hex", "", "Hex signature with ?? wildcards (e.g. '48 8B ?? 10')")
	flags.StringVar(&f.Chain, "chain", "", "Comma separated pointer offsets (e.g. 0x1E8,0x118)")
	flags.BoolVarP(&f.All, "all", "a", false, "Collect every match instead of the first")
	flags.IntVar(&f.Cap, "cap", 0, "Maximum matches with --all, 0 for unlimited")
	flags.StringVar(&f.Strategy, "strategy", "sequential", "Scan strategy: sequential or concurrent")
	flags.IntVar(&f.MaxDOP, "maxdop", runtime.NumCPU(), "Worker pool size for the concurrent strategy")
	flags.BoolVar(&f.FromZero, "from-zero", false, "Scan the whole address space instead of starting at the module base")
	flags.IntVar(&f.Context, "context", 0, "Dump this many bytes around each match")
}

// Resolve looks the target up and applies the overriding flags
func (f *TargetFlags) Resolve(flags *pflag.FlagSet) (offsets.Target, error) {
	table, err := f.Table()
	if err != nil {
		return offsets.Target{}, err
	}

	target, err := table.Lookup(f.Target, f.Build)
	if err != nil {
		return offsets.Target{}, err
	}

	if f.Process != "" {
		target.Process = f.Process
	}
	if f.Module != "" {
		target.Module = f.Module
	}
	if f.Signature != "" && f.Hex != "" {
		return offsets.Target{}, fmt.Errorf("--signature and --hex are exclusive")
	}
	if f.Signature != "" {
		target.Signature = f.Signature
		target.HexSignature = ""
	}
	if f.Hex != "" {
		target.HexSignature = f.Hex
		target.Signature = ""
	}
	if flags.Changed("chain") {
		c, err := chain.ParseChain(f.Chain)
		if err != nil {
			return offsets.Target{}, fmt.Errorf("invalid --chain: %w", err)
		}
		target.Chain = make([]offsets.Offset, len(c))
		for i, off := range c {
			target.Chain[i] = offsets.Offset(off)
		}
		target.Labels = nil
	}
	if f.All {
		target.Mode = scan.AllMatches.String()
	}
	if flags.Changed("cap") {
		target.Cap = f.Cap
	}

	if err := target.Validate(); err != nil {
		return offsets.Target{}, err
	}
	return target, nil
}

// Options builds the run options
func (f *TargetFlags) Options() (locator.Options, error) {
	strategy, err := scan.ParseStrategy(strings.ToLower(f.Strategy))
	if err != nil {
		return locator.Options{}, err
	}
	return locator.Options{
		Strategy: strategy,
		MaxDOP:   f.MaxDOP,
		FromZero: f.FromZero,
	}, nil
}
