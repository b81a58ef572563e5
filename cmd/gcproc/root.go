package main

import (
	"os"

	"github.com/spf13/cobra"
)

var opts globalOptions

var rootCmd = &cobra.Command{
	Use:   "gcproc",
	Short: "gcproc rewrites gcode programs through a chain of processors",
	Long: `gcproc runs gcode programs through a configurable chain of processors: comment and
whitespace removal, arc expansion, line splitting, mesh leveling, run from a line, and more,
before they are sent to a CNC controller.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags(), &opts)
}
