package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"memwalk/console"
)

func newTargetsCmd() *cobra.Command {
	var f TableFlags

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List the offset table entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := f.Table()
			if err != nil {
				return err
			}

			t := console.NewTable(
				console.Column{Header: "NAME"},
				console.Column{Header: "BUILD"},
				console.Column{Header: "PROCESS"},
				console.Column{Header: "MODULE"},
				console.Column{Header: "SIGNATURE"},
				console.Column{Header: "CHAIN"},
			)
			for _, target := range table.Targets {
				sig := fmt.Sprintf("%q", target.Signature)
				if target.HexSignature != "" {
					sig = target.HexSignature
				}
				t.AddRow(target.Name, target.Build, target.Process, target.Module, sig, target.Offsets().String())
			}
			return newRenderer().PrintTable(t)
		},
	}

	f.AddFlags(cmd.Flags())
	return cmd
}
