package edit

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
)

// TraceBuilder buffers the points of a trace being drawn. It is not part of
// any store until Finish.
type TraceBuilder struct {
	Layer annotation.Layer
	Size  float64
	Color string

	points []annotation.Point
}

// NewTraceBuilder starts an empty trace.
func NewTraceBuilder(layer annotation.Layer, size float64, color string) *TraceBuilder {
	return &TraceBuilder{Layer: layer, Size: size, Color: color}
}

// Append adds a point. A point equal to the last one is ignored.
func (b *TraceBuilder) Append(p annotation.Point) {
	if n := len(b.points); n > 0 && b.points[n-1] == p {
		return
	}
	b.points = append(b.points, p)
}

// Pop removes the last point.
func (b *TraceBuilder) Pop() bool {
	if len(b.points) == 0 {
		return false
	}
	b.points = b.points[:len(b.points)-1]
	return true
}

// Len returns the number of buffered points.
func (b *TraceBuilder) Len() int { return len(b.points) }

// Active reports whether a trace is in progress.
func (b *TraceBuilder) Active() bool { return len(b.points) > 0 }

// Points returns a copy of the buffered points.
func (b *TraceBuilder) Points() []annotation.Point {
	return append([]annotation.Point(nil), b.points...)
}

// Cancel drops the buffered points.
func (b *TraceBuilder) Cancel() {
	b.points = nil
}

// Finish turns the buffer into a trace and resets it. With no points there
// is nothing to commit; a single point becomes a dot-trace holding the point
// twice.
func (b *TraceBuilder) Finish(id string) (annotation.Trace, bool) {
	pts := b.points
	b.points = nil

	switch len(pts) {
	case 0:
		return annotation.Trace{}, false
	case 1:
		pts = []annotation.Point{pts[0], pts[0]}
	}
	return annotation.Trace{
		ID:     id,
		Points: pts,
		Layer:  b.Layer,
		Size:   b.Size,
		Color:  b.Color,
	}, true
}
