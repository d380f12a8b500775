package main

import (
	"github.com/spf13/cobra"

	"memwalk/console"
	"memwalk/locator"
	"memwalk/process"
	"memwalk/process_finder"
)

func newLocateCmd() *cobra.Command {
	var f TargetFlags

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Find the target process, scan it and resolve the pointer chain",
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

			opener, modules, err := platform()
			if err != nil {
				return err
			}

			out := newRenderer()
			if f.Context > 0 {
				opts.Inspect = func(mem process.RemoteMemory, report locator.Report) {
					printContext(out, mem, report, f.Context)
				}
			}

			l := locator.New(process_finder.New(), opener, modules, locator.WithEvents(out))
			report, err := l.Locate(target, opts)
			if err != nil {
				return err
			}
			return printSteps(out, report)
		},
	}

	f.AddFlags(cmd.Flags())
	return cmd
}

// printSteps tabulates the chain walk of a successful run
func printSteps(out *console.Renderer, report locator.Report) error {
	if !report.Found || len(report.Steps) == 0 {
		return nil
	}
	out.Println()
	return out.PrintTable(out.StepsTable(report.Steps, report.Target.Label))
}

