package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/project"
)

// loaded is a project opened from disk.
type loaded struct {
	path   string
	store  *annotation.Store
	alloc  *nodeid.Allocator
	report project.Report
}

func loadProject(path string) (*loaded, error) {
	alloc := nodeid.NewAllocator(nodeid.DefaultSeed)
	store, report, err := project.LoadFile(path, alloc, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &loaded{path: path, store: store, alloc: alloc, report: report}, nil
}

// parseFloats parses n comma separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func parsePoint(s string) (geom.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(v[0], v[1]), nil
}

func parseKinds(names []string) ([]annotation.Kind, error) {
	out := make([]annotation.Kind, 0, len(names))
	for _, n := range names {
		k, ok := annotation.ParseKind(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("unknown entity kind %q", n)
		}
		out = append(out, k)
	}
	return out, nil
}

// describe returns a one-line summary of an entity.
func describe(e annotation.Entity) string {
	switch v := e.(type) {
	case annotation.Via:
		return fmt.Sprintf("%-24s node %-6v at (%g, %g)  %s", v.EntityRef(), v.Center.ID, v.Center.X, v.Center.Y, v.Type)
	case annotation.Pad:
		return fmt.Sprintf("%-24s node %-6v at (%g, %g) %s  %s", v.EntityRef(), v.Center.ID, v.Center.X, v.Center.Y, v.Layer, v.Type)
	case annotation.Trace:
		return fmt.Sprintf("%-24s %d points on %s", v.EntityRef(), len(v.Points), v.Layer)
	case annotation.PowerNode:
		return fmt.Sprintf("%-24s node %-6v bus %s", v.EntityRef(), v.Point.ID, v.BusID)
	case annotation.GroundNode:
		return fmt.Sprintf("%-24s node %-6v %s", v.EntityRef(), v.Point.ID, v.DisplayLabel())
	case annotation.Component:
		return fmt.Sprintf("%-24s %s %s on %s", v.EntityRef(), v.Designator, v.Package, v.Layer)
	}
	return fmt.Sprint(e.EntityRef())
}
