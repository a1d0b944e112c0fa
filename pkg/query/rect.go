package query

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
)

// IntersectsRect reports whether e is caught by r. Point-like entities are
// caught when their center lies in r; traces when any segment enters r
// (Cohen–Sutherland); components when their outline overlaps r.
func IntersectsRect(e annotation.Entity, r geom.Rect) bool {
	switch v := e.(type) {
	case annotation.Via:
		return r.Contains(v.Center.Pos())
	case annotation.Pad:
		return r.Contains(v.Center.Pos())
	case annotation.Trace:
		return geom.PolylineIntersectsRect(v.Positions(), r)
	case annotation.PowerNode:
		return r.Contains(v.Point.Pos())
	case annotation.GroundNode:
		return r.Contains(v.Point.Pos())
	case annotation.Component:
		return r.Intersects(v.Bounds())
	}
	return false
}

// InRect returns every accepted entity caught by r, in store order.
func InRect(s *annotation.Store, r geom.Rect, f Filter) []annotation.Entity {
	if f == nil {
		f = All
	}
	var out []annotation.Entity
	for _, e := range s.Entities() {
		if f.Accept(e) && IntersectsRect(e, r) {
			out = append(out, e)
		}
	}
	return out
}
