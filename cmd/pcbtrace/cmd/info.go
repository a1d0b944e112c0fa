package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/connectivity"
)

var (
	outputJSON bool
)

// ProjectInfo is the structured summary printed by info.
type ProjectInfo struct {
	Path        string         `json:"path"`
	Counts      map[string]int `json:"counts"`
	Buses       []BusInfo      `json:"buses"`
	NextNodeID  int64          `json:"next_node_id"`
	Nets        int            `json:"nets"`
	Shorts      []string       `json:"shorts,omitempty"`
	Conflicts   []string       `json:"conflicts,omitempty"`
	Dangling    []string       `json:"dangling_pins,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Synthesized int            `json:"synthesized_ids"`
}

// BusInfo describes one power bus.
type BusInfo struct {
	Name    string  `json:"name"`
	Voltage string  `json:"voltage"`
	Volts   float64 `json:"volts"`
}

var infoCmd = &cobra.Command{
	Use:   "info <project>",
	Short: "Summarize a project",
	Long: `Print entity counts, power buses, the Node ID counter and any
connectivity problems found in a project.

Examples:
  pcbtrace info board.json
  pcbtrace info --json board.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&outputJSON, "json", false,
		"output as JSON (for programmatic access)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}

	info := buildProjectInfo(p)
	if outputJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}
	printProjectInfo(cmd.OutOrStdout(), info)
	return nil
}

func buildProjectInfo(p *loaded) *ProjectInfo {
	info := &ProjectInfo{
		Path:        p.path,
		Counts:      make(map[string]int),
		NextNodeID:  int64(p.alloc.Peek()),
		Synthesized: p.report.Synthesized,
	}
	for _, k := range annotation.Kinds {
		info.Counts[k.String()] = p.store.Count(k)
	}
	for _, b := range connectivity.SortBuses(p.store.Buses()) {
		volts, _ := connectivity.ParseVoltage(b.Voltage)
		info.Buses = append(info.Buses, BusInfo{Name: b.Name, Voltage: b.Voltage, Volts: volts})
	}

	nl := connectivity.BuildNetlist(p.store)
	info.Nets = nl.NetCount()
	for _, n := range nl.Shorts() {
		info.Shorts = append(info.Shorts, fmt.Sprintf("%s (nodes %v)", n.Name, n.Nodes))
	}
	for _, c := range connectivity.Conflicts(p.store) {
		info.Conflicts = append(info.Conflicts, c.Error())
	}
	for _, d := range p.store.DanglingPins() {
		info.Dangling = append(info.Dangling, fmt.Sprintf("%s pin %d -> %s", d.Designator, d.Pin, d.Value))
	}
	for _, d := range p.report.Diagnostics {
		info.Diagnostics = append(info.Diagnostics, d.String())
	}
	return info
}

func printProjectInfo(w io.Writer, info *ProjectInfo) {
	fmt.Fprintf(w, "Project: %s\n", info.Path)
	fmt.Fprintf(w, "  Vias:       %d\n", info.Counts["via"])
	fmt.Fprintf(w, "  Pads:       %d\n", info.Counts["pad"])
	fmt.Fprintf(w, "  Traces:     %d\n", info.Counts["trace"])
	fmt.Fprintf(w, "  Power:      %d\n", info.Counts["power"])
	fmt.Fprintf(w, "  Ground:     %d\n", info.Counts["ground"])
	fmt.Fprintf(w, "  Components: %d\n", info.Counts["component"])
	fmt.Fprintf(w, "  Nets:       %d\n", info.Nets)
	fmt.Fprintf(w, "  Next ID:    %d\n", info.NextNodeID)

	if len(info.Buses) > 0 {
		fmt.Fprintf(w, "\nPower buses:\n")
		for _, b := range info.Buses {
			fmt.Fprintf(w, "  %-10s %s\n", b.Name, b.Voltage)
		}
	}

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s (%d):\n", title, len(lines))
		for _, l := range lines {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
	section("Shorts", info.Shorts)
	section("Conflicts", info.Conflicts)
	section("Dangling pins", info.Dangling)
	section("Dropped on load", info.Diagnostics)
}
