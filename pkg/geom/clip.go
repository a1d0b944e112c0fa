package geom

// Cohen–Sutherland outcodes.
const (
	codeInside uint8 = 0
	codeLeft   uint8 = 1
	codeRight  uint8 = 2
	codeBelow  uint8 = 4
	codeAbove  uint8 = 8
)

// maxClipSteps bounds the clipping loop. Each step pins one coordinate of
// one endpoint onto an edge, so four steps per endpoint are enough; the
// extra room absorbs floating point drift at corners.
const maxClipSteps = 16

func outcode(p Point, r Rect) uint8 {
	code := codeInside
	if p.X < r.Min.X {
		code |= codeLeft
	} else if p.X > r.Max.X {
		code |= codeRight
	}
	if p.Y < r.Min.Y {
		code |= codeBelow
	} else if p.Y > r.Max.Y {
		code |= codeAbove
	}
	return code
}

// ClipSegment clips the segment a-b against r using the Cohen–Sutherland
// algorithm. It returns the visible part of the segment and true, or false
// when the segment lies entirely outside r.
func ClipSegment(a, b Point, r Rect) (Point, Point, bool) {
	ca := outcode(a, r)
	cb := outcode(b, r)

	for step := 0; step < maxClipSteps; step++ {
		if ca|cb == 0 {
			return a, b, true
		}
		if ca&cb != 0 {
			return a, b, false
		}

		out := ca
		if out == 0 {
			out = cb
		}

		// The endpoints sit on opposite sides of the violated edge, so the
		// divisors below are never zero.
		var p Point
		switch {
		case out&codeAbove != 0:
			p.X = a.X + (b.X-a.X)*(r.Max.Y-a.Y)/(b.Y-a.Y)
			p.Y = r.Max.Y
		case out&codeBelow != 0:
			p.X = a.X + (b.X-a.X)*(r.Min.Y-a.Y)/(b.Y-a.Y)
			p.Y = r.Min.Y
		case out&codeRight != 0:
			p.Y = a.Y + (b.Y-a.Y)*(r.Max.X-a.X)/(b.X-a.X)
			p.X = r.Max.X
		case out&codeLeft != 0:
			p.Y = a.Y + (b.Y-a.Y)*(r.Min.X-a.X)/(b.X-a.X)
			p.X = r.Min.X
		}

		if out == ca {
			a = p
			ca = outcode(a, r)
		} else {
			b = p
			cb = outcode(b, r)
		}
	}
	return a, b, false
}

// SegmentIntersectsRect reports whether any part of segment a-b lies inside
// or on the boundary of r.
func SegmentIntersectsRect(a, b Point, r Rect) bool {
	_, _, ok := ClipSegment(a, b, r)
	return ok
}

// PolylineIntersectsRect reports whether any segment of the polyline touches
// r. A single point is tested for containment.
func PolylineIntersectsRect(pts []Point, r Rect) bool {
	switch len(pts) {
	case 0:
		return false
	case 1:
		return r.Contains(pts[0])
	}
	for i := 1; i < len(pts); i++ {
		if SegmentIntersectsRect(pts[i-1], pts[i], r) {
			return true
		}
	}
	return false
}
