package query

import (
	"math"
	"sort"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
)

// Hit is an entity found under a point.
type Hit struct {
	Ref      annotation.Ref
	Entity   annotation.Entity
	Distance float64
}

// HitEntity tests whether p picks e with tolerance tol (world units). The
// returned distance ranks competing hits; it is meaningful only when the
// second result is true.
//
//   - vias and pads: circle of radius max(size/2, tol)
//   - power and ground symbols: the same circle plus the cross-hair arms,
//     which reach size from the center horizontally and vertically
//   - traces: distance to the nearest segment within max(tol, size/2)
//   - components: the outline grown by tol
func HitEntity(e annotation.Entity, p geom.Point, tol float64) (float64, bool) {
	switch v := e.(type) {
	case annotation.Via:
		return hitCircle(p, v.Center.Pos(), v.Size/2, tol)
	case annotation.Pad:
		return hitCircle(p, v.Center.Pos(), v.Size/2, tol)
	case annotation.Trace:
		return hitPolyline(p, v.Positions(), v.Size/2, tol)
	case annotation.PowerNode:
		return hitSymbol(p, v.Point.Pos(), v.Size, tol)
	case annotation.GroundNode:
		return hitSymbol(p, v.Point.Pos(), v.Size, tol)
	case annotation.Component:
		if !v.Bounds().Grow(tol).Contains(p) {
			return 0, false
		}
		return geom.Distance(p, v.Position), true
	}
	return 0, false
}

func hitCircle(p, c geom.Point, radius, tol float64) (float64, bool) {
	d := geom.Distance(p, c)
	return d, d <= math.Max(radius, tol)
}

func hitPolyline(p geom.Point, pts []geom.Point, halfWidth, tol float64) (float64, bool) {
	if len(pts) == 0 {
		return 0, false
	}
	d := geom.Distance(p, pts[0])
	for i := 1; i < len(pts); i++ {
		d = math.Min(d, geom.DistanceToSegment(p, pts[i-1], pts[i]))
	}
	return d, d <= math.Max(tol, halfWidth)
}

func hitSymbol(p, c geom.Point, size, tol float64) (float64, bool) {
	if d, ok := hitCircle(p, c, size/2, tol); ok {
		return d, true
	}
	arms := math.Min(
		geom.DistanceToSegment(p, geom.Pt(c.X-size, c.Y), geom.Pt(c.X+size, c.Y)),
		geom.DistanceToSegment(p, geom.Pt(c.X, c.Y-size), geom.Pt(c.X, c.Y+size)),
	)
	return arms, arms <= tol
}

// HitAll returns every accepted entity under p, nearest first. Equal
// distances keep store order.
func HitAll(s *annotation.Store, p geom.Point, tol float64, f Filter) []Hit {
	if f == nil {
		f = All
	}
	var hits []Hit
	for _, e := range s.Entities() {
		if !f.Accept(e) {
			continue
		}
		if d, ok := HitEntity(e, p, tol); ok {
			hits = append(hits, Hit{Ref: e.EntityRef(), Entity: e, Distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// Nearest returns the single best hit under p across all kinds.
func Nearest(s *annotation.Store, p geom.Point, tol float64, f Filter) (Hit, bool) {
	hits := HitAll(s, p, tol, f)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}
