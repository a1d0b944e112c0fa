package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/internal/logging"
)

var (
	// Global flags
	verbose bool

	log *logrus.Entry
)

var rootCmd = &cobra.Command{
	Use:   "pcbtrace",
	Short: "PCB reverse engineering project tool",
	Long: `Inspect and edit PCB tracing projects: the vias, pads, traces, power
and ground nodes and components annotated over board photos.

Examples:
  pcbtrace info board.json                          # Entity counts and problems
  pcbtrace netlist board.json --output-kicad b.net  # Export a KiCad netlist
  pcbtrace resolve board.json 42                    # Electrical type of node 42`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.New(cmd.ErrOrStderr(), verbose)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
