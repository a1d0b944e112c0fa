package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

var (
	snapKinds  []string
	snapRadius float64
	snapLayer  string
)

var snapCmd = &cobra.Command{
	Use:   "snap <project> <x> <y>",
	Short: "Show which connection point a world position snaps to",
	Args:  cobra.ExactArgs(3),
	RunE:  runSnap,
}

func init() {
	rootCmd.AddCommand(snapCmd)

	snapCmd.Flags().StringSliceVar(&snapKinds, "kinds", []string{"via", "pad", "power", "ground"},
		"snap candidates")
	snapCmd.Flags().Float64Var(&snapRadius, "radius", query.DefaultSnapRadius,
		"snap radius in world units")
	snapCmd.Flags().StringVar(&snapLayer, "layer", "",
		"only snap to pads and symbols on this layer")
}

func runSnap(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[2], err)
	}
	kinds, err := parseKinds(snapKinds)
	if err != nil {
		return err
	}

	opts := query.SnapOptions{Radius: snapRadius, Layer: annotation.Layer(snapLayer)}
	for _, k := range kinds {
		switch k {
		case annotation.KindVia:
			opts.Kinds |= query.SnapVias
		case annotation.KindPad:
			opts.Kinds |= query.SnapPads
		case annotation.KindPower:
			opts.Kinds |= query.SnapPower
		case annotation.KindGround:
			opts.Kinds |= query.SnapGround
		default:
			return fmt.Errorf("%s is not a snap target", k)
		}
	}

	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	res := query.Snap(p.store, geom.Pt(x, y), opts)
	out := cmd.OutOrStdout()
	if !res.Snapped {
		fmt.Fprintf(out, "no snap: (%g, %g)\n", res.Point.X, res.Point.Y)
		return nil
	}
	fmt.Fprintf(out, "snapped to %s node %v at (%g, %g)\n", res.Target, res.NodeID(), res.Point.X, res.Point.Y)
	return nil
}
