// Package geom provides the world-space primitives shared by the annotation
// engine: points, rectangles, the viewport transform, quantization and the
// segment clipping used by selection and erasing.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in world coordinates (image pixels of the board photo).
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a.vec(), b.vec()))
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
// A degenerate segment (a == b) is treated as a point.
func DistanceToSegment(p, a, b Point) float64 {
	ab := r2.Sub(b.vec(), a.vec())
	ap := r2.Sub(p.vec(), a.vec())

	lenSq := r2.Norm2(ab)
	if lenSq == 0 {
		return r2.Norm(ap)
	}

	t := r2.Dot(ap, ab) / lenSq
	t = math.Max(0, math.Min(1, t))

	closest := r2.Add(a.vec(), r2.Scale(t, ab))
	return Distance(p, fromVec(closest))
}

// Rect is an axis-aligned rectangle with Min <= Max on both axes.
type Rect struct {
	Min Point
	Max Point
}

// NewRect builds a normalized rectangle from two opposite corners given in
// any order, as produced by a drag gesture.
func NewRect(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Square returns the axis-aligned square of the given side centered on c.
func Square(c Point, side float64) Rect {
	h := math.Abs(side) / 2
	return Rect{
		Min: Point{X: c.X - h, Y: c.Y - h},
		Max: Point{X: c.X + h, Y: c.Y + h},
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether r and o overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && r.Max.X >= o.Min.X &&
		r.Min.Y <= o.Max.Y && r.Max.Y >= o.Min.Y
}

// Grow grows (d > 0) or shrinks (d < 0) the rectangle on every side.
func (r Rect) Grow(d float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Bounds returns the smallest rectangle containing all points. The second
// result is false when pts is empty.
func Bounds(pts []Point) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r, true
}
