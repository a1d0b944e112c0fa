package annotation

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
)

// Translate returns e moved by d. Point coordinates are re-quantized and keep
// their Node IDs.
func Translate(e Entity, d geom.Point) Entity {
	move := func(p Point) Point {
		q := NewPoint(p.Pos().Add(d))
		q.ID = p.ID
		return q
	}

	switch v := e.(type) {
	case Via:
		v.Center = move(v.Center)
		return v
	case Pad:
		v.Center = move(v.Center)
		return v
	case Trace:
		pts := make([]Point, len(v.Points))
		for i, p := range v.Points {
			pts[i] = move(p)
		}
		v.Points = pts
		return v
	case PowerNode:
		v.Point = move(v.Point)
		return v
	case GroundNode:
		v.Point = move(v.Point)
		return v
	case Component:
		v = v.clone()
		v.Position = geom.Quantize(v.Position.Add(d))
		return v
	}
	return e
}

// Resize returns e with a new size. For components the outline is scaled so
// that its larger side equals size.
func Resize(e Entity, size float64) Entity {
	if size <= 0 {
		return e
	}
	switch v := e.(type) {
	case Via:
		v.Size = size
		return v
	case Pad:
		v.Size = size
		return v
	case Trace:
		v = v.clone()
		v.Size = size
		return v
	case PowerNode:
		v.Size = size
		return v
	case GroundNode:
		v.Size = size
		return v
	case Component:
		v = v.clone()
		longest := v.Width
		if v.Height > longest {
			longest = v.Height
		}
		if longest > 0 {
			f := size / longest
			v.Width *= f
			v.Height *= f
		} else {
			v.Width, v.Height = size, size
		}
		return v
	}
	return e
}

// Recolor returns e with a new display color. Components have no color and
// are returned unchanged.
func Recolor(e Entity, color string) Entity {
	switch v := e.(type) {
	case Via:
		v.Color = color
		return v
	case Pad:
		v.Color = color
		return v
	case Trace:
		v = v.clone()
		v.Color = color
		return v
	case PowerNode:
		v.Color = color
		return v
	case GroundNode:
		v.Color = color
		return v
	}
	return cloneEntity(e)
}
