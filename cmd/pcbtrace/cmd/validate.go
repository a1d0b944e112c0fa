package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project>",
	Short: "Check a project for entities dropped on load",
	Long: `Load a project and list every entity that could not be restored:
traces with fewer than two points, negative or non-finite coordinates,
duplicate ids and power/ground conflicts. Exits non-zero if any were found.

Dangling component pins are reported as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	for _, d := range p.store.DanglingPins() {
		fmt.Fprintf(out, "warning: %s pin %d references missing node %s\n", d.Designator, d.Pin, d.Value)
	}
	for _, d := range p.report.Diagnostics {
		fmt.Fprintf(out, "error: %s\n", d)
	}
	if n := len(p.report.Diagnostics); n > 0 {
		return fmt.Errorf("%s: %d problem(s)", p.path, n)
	}
	fmt.Fprintf(out, "%s: OK (%d entities)\n", p.path, p.store.Len())
	return nil
}
