package query

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// DefaultSnapRadius is the snap distance in world units. It does not depend
// on the zoom level.
const DefaultSnapRadius = 15.0

// SnapKinds selects which connection points are snap candidates.
type SnapKinds uint8

const (
	SnapVias SnapKinds = 1 << iota
	SnapPads
	SnapPower
	SnapGround

	SnapAll = SnapVias | SnapPads | SnapPower | SnapGround
)

// Has reports whether k includes all of o.
func (k SnapKinds) Has(o SnapKinds) bool {
	return k&o == o
}

// SnapOptions configures Snap.
type SnapOptions struct {
	Kinds SnapKinds

	// Radius in world units. Zero means DefaultSnapRadius.
	Radius float64

	// Layer restricts pad, power and ground candidates to one side. Vias
	// always qualify. Empty means any layer.
	Layer annotation.Layer
}

// SnapResult is the outcome of Snap.
type SnapResult struct {
	// Point is the quantized target position carrying the target's Node ID,
	// or the quantized input position without an ID.
	Point annotation.Point

	// Target names the entity snapped to. Zero when Snapped is false.
	Target annotation.Ref

	Snapped bool
}

// NodeID returns the snapped Node ID or nodeid.None.
func (r SnapResult) NodeID() nodeid.ID {
	return r.Point.ID
}

// Snap finds the connection point nearest to p within the snap radius. The
// nearest candidate wins; on equal distance the first one in store order
// (vias, pads, power, ground) is kept.
func Snap(s *annotation.Store, p geom.Point, opts SnapOptions) SnapResult {
	if !p.IsFinite() {
		return SnapResult{Point: annotation.NewPoint(p)}
	}
	radius := opts.Radius
	if radius <= 0 {
		radius = DefaultSnapRadius
	}

	var (
		found    bool
		bestDist float64
		best     SnapResult
	)
	consider := func(ref annotation.Ref, pt annotation.Point, layer annotation.Layer) {
		if opts.Layer != "" && layer != "" && layer != opts.Layer {
			return
		}
		d := geom.Distance(p, pt.Pos())
		if d > radius {
			return
		}
		if found && d >= bestDist {
			return
		}
		found = true
		bestDist = d
		best = SnapResult{
			Point:   annotation.NodePoint(pt.ID, pt.Pos()),
			Target:  ref,
			Snapped: true,
		}
	}

	if opts.Kinds.Has(SnapVias) {
		for _, v := range s.Vias() {
			consider(v.EntityRef(), v.Center, "")
		}
	}
	if opts.Kinds.Has(SnapPads) {
		for _, pad := range s.Pads() {
			consider(pad.EntityRef(), pad.Center, pad.Layer)
		}
	}
	if opts.Kinds.Has(SnapPower) {
		for _, pw := range s.PowerNodes() {
			consider(pw.EntityRef(), pw.Point, pw.Layer)
		}
	}
	if opts.Kinds.Has(SnapGround) {
		for _, g := range s.GroundNodes() {
			consider(g.EntityRef(), g.Point, g.Layer)
		}
	}

	if !found {
		return SnapResult{Point: annotation.NewPoint(p)}
	}
	return best
}
