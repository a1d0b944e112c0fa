package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/edit"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/project"
)

var (
	eraseAt     []string
	eraseBrush  float64
	eraseOutput string
	eraseLocks  []string
)

var eraseCmd = &cobra.Command{
	Use:   "erase <project>",
	Short: "Apply eraser samples to a project",
	Long: `Sweep a square eraser over the given points and write the result.
Vias, pads, traces, power and ground nodes touching the square are removed;
components and locked kinds are kept.

Examples:
  pcbtrace erase board.json --at 10,10 --at 20,10 --brush 8 -o out.json
  pcbtrace erase board.json --at 50,50 --lock via -o out.json`,
	Args: cobra.ExactArgs(1),
	RunE: runErase,
}

func init() {
	rootCmd.AddCommand(eraseCmd)

	eraseCmd.Flags().StringArrayVar(&eraseAt, "at", nil,
		"eraser sample x,y (repeatable)")
	eraseCmd.Flags().Float64Var(&eraseBrush, "brush", 20,
		"eraser square side in world units")
	eraseCmd.Flags().StringVarP(&eraseOutput, "output", "o", "",
		"output project file")
	eraseCmd.Flags().StringSliceVar(&eraseLocks, "lock", nil,
		"entity kinds to protect")

	eraseCmd.MarkFlagRequired("at")
	eraseCmd.MarkFlagRequired("output")
}

func runErase(cmd *cobra.Command, args []string) error {
	samples := make([]geom.Point, 0, len(eraseAt))
	for _, s := range eraseAt {
		pt, err := parsePoint(s)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		samples = append(samples, pt)
	}
	if eraseBrush <= 0 {
		return fmt.Errorf("--brush must be positive")
	}
	kinds, err := parseKinds(eraseLocks)
	if err != nil {
		return err
	}
	locks := edit.Locks{}
	for _, k := range kinds {
		locks[k] = true
	}

	p, err := loadProject(args[0])
	if err != nil {
		return err
	}

	res := edit.EraseStroke(p.store, samples, eraseBrush, locks, nil)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "removed %d entities\n", len(res.Removed))
	for _, ref := range res.Removed {
		fmt.Fprintf(out, "  %s\n", ref)
	}
	var lv *edit.LockViolationError
	if err := res.Err(); errors.As(err, &lv) {
		fmt.Fprintf(out, "kept locked: %v\n", lockNames(lv.Kinds))
	}

	store := connectivity.Apply(res.Store)
	if err := project.SaveFile(eraseOutput, store, p.alloc.Peek()); err != nil {
		return err
	}
	log.WithField("path", eraseOutput).Info("project written")
	return nil
}

func lockNames(kinds []annotation.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}
