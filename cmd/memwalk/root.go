package main

import (
	"os"

	"github.com/spf13/cobra"

	"memwalk/console"
)

// outputFlags are shared by every command
type outputFlags struct {
	NoColor bool
	Verbose bool
}

var output outputFlags

var rootCmd = &cobra.Command{
	Use:   "memwalk",
	Short: "memwalk - signature scanner and pointer chain resolver for running processes",
	Long: `Locate an array-of-bytes signature in the memory of a running process
and walk a chain of pointer offsets from the first match.

Targets (process, module, signature, chain) come from an offset table keyed
by build. The built-in table can be replaced with --config and every entry
field can be overridden with flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&output.NoColor, "no-color", false, "Disable coloured output")
	rootCmd.PersistentFlags().BoolVarP(&output.Verbose, "verbose", "v", false, "Show debug events")

	rootCmd.AddCommand(newLocateCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newTargetsCmd())
}

func newRenderer() *console.Renderer {
	return console.New(os.Stdout, console.ColorEnabled(os.Stdout, output.NoColor), output.Verbose)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
