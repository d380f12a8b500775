package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"memwalk/locator"
	"memwalk/process"
	"memwalk/process_blob"
)

func newScanCmd() *cobra.Command {
	var (
		f    TargetFlags
		file string
		base string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a raw memory dump file instead of a live process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := f.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := f.Options()
			if err != nil {
				return err
			}

			addr, err := strconv.ParseUint(base, 0, 64)
			if err != nil {
				return fmt.Errorf("invalid --base %q: %w", base, err)
			}

			dump, err := process_blob.LoadFile(file, process.ProcessMemoryAddress(addr))
			if err != nil {
				return err
			}
			defer dump.Close()

			out := newRenderer()
			l := locator.New(nil, nil, nil, locator.WithEvents(out))

			start := process.ProcessMemoryAddress(addr)
			if opts.FromZero {
				start = 0
			}
			report, err := l.Run(dump, start, target, opts)
			if err != nil {
				return err
			}
			if f.Context > 0 {
				printContext(out, dump, report, f.Context)
			}
			return printSteps(out, report)
		},
	}

	f.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&file, "file", "f", "", "Raw memory dump to scan")
	cmd.Flags().StringVar(&base, "base", "0", "Address the first byte of the dump was read from")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
