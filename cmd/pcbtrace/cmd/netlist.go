package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/connectivity"
)

var (
	netlistFormat string
	kicadOutput   string
	checkKiCad    bool
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <project>",
	Short: "Derive the netlist of a project",
	Long: `Group Node IDs joined by traces into nets, attach component pins and
name each net after its power bus or ground label.

Examples:
  pcbtrace netlist board.json                       # Human readable
  pcbtrace netlist board.json -o json               # JSON
  pcbtrace netlist board.json --output-kicad b.net  # KiCad netlist file`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)

	netlistCmd.Flags().StringVarP(&netlistFormat, "output", "o", "text",
		"output format: text or json")
	netlistCmd.Flags().StringVar(&kicadOutput, "output-kicad", "",
		"write a KiCad netlist to this file")
	netlistCmd.Flags().BoolVar(&checkKiCad, "check", false,
		"parse the generated KiCad netlist before writing it")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	nl := connectivity.BuildNetlist(p.store)
	out := cmd.OutOrStdout()

	switch netlistFormat {
	case "json":
		data, err := nl.ExportJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "text":
		fmt.Fprintf(out, "%d net(s)\n", nl.NetCount())
		for _, n := range nl.Nets {
			fmt.Fprintf(out, "  %-10s %-14s nodes %v", n.Name, n.Type, n.Nodes)
			for _, pin := range n.Pins {
				fmt.Fprintf(out, " %s.%d", pin.Designator, pin.Pin)
			}
			if n.Short {
				fmt.Fprint(out, "  SHORT")
			}
			fmt.Fprintln(out)
		}
	default:
		return fmt.Errorf("unknown output format %q", netlistFormat)
	}

	if kicadOutput == "" {
		return nil
	}
	text, err := nl.ExportKiCad()
	if err != nil {
		return err
	}
	if checkKiCad {
		if err := connectivity.ValidateKiCad(text); err != nil {
			return err
		}
	}
	if err := os.WriteFile(kicadOutput, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write KiCad netlist: %w", err)
	}
	log.WithField("path", kicadOutput).Info("KiCad netlist written")
	return nil
}
