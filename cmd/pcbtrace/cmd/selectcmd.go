package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/edit"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

var (
	selectRect  string
	selectScale float64
	hideTop     bool
	hideBottom  bool
	hiddenKinds []string
)

var selectCmd = &cobra.Command{
	Use:   "select <project>",
	Short: "List the entities a drag rectangle would select",
	Long: `Run click or rectangle selection over a project. A rectangle smaller
than 3 world units on both sides acts as a click at its center, picking the
nearest entity within the hit tolerance for --scale.

Examples:
  pcbtrace select board.json --rect 0,0,100,100
  pcbtrace select board.json --rect 10,10,11,11 --scale 4`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectRect, "rect", "",
		"world rectangle x0,y0,x1,y1")
	selectCmd.Flags().Float64Var(&selectScale, "scale", 1,
		"zoom level used for the click tolerance")
	selectCmd.Flags().BoolVar(&hideTop, "hide-top", false, "ignore the top layer")
	selectCmd.Flags().BoolVar(&hideBottom, "hide-bottom", false, "ignore the bottom layer")
	selectCmd.Flags().StringSliceVar(&hiddenKinds, "hide", nil, "entity kinds to ignore")

	selectCmd.MarkFlagRequired("rect")
}

func visibility() (query.Visibility, error) {
	v := query.Visibility{HideTop: hideTop, HideBottom: hideBottom}
	kinds, err := parseKinds(hiddenKinds)
	if err != nil {
		return v, err
	}
	if len(kinds) > 0 {
		v.Hidden = make(map[annotation.Kind]bool, len(kinds))
		for _, k := range kinds {
			v.Hidden[k] = true
		}
	}
	return v, nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	c, err := parseFloats(selectRect, 4)
	if err != nil {
		return fmt.Errorf("--rect: %w", err)
	}
	vis, err := visibility()
	if err != nil {
		return err
	}
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}

	rect := geom.NewRect(geom.Pt(c[0], c[1]), geom.Pt(c[2], c[3]))
	sel := edit.Select(p.store, edit.Selection{}, rect, edit.SelectOptions{
		Tolerance: geom.HitTolerance(selectScale),
		Filter:    vis,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d selected\n", sel.Len())
	for _, ref := range sel.Refs() {
		e, _ := p.store.Lookup(ref)
		fmt.Fprintf(out, "  %s\n", describe(e))
	}
	return nil
}
