package project

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Capture converts a store into a document. counter is the next Node ID the
// allocator would hand out.
func Capture(s *annotation.Store, counter nodeid.ID) *Document {
	doc := &Document{
		Version:        Version,
		PointIDCounter: counter,
		PowerBuses:     []BusJSON{},
		Drawing: Drawing{
			DrawingStrokes:   []StrokeJSON{},
			ComponentsTop:    []ComponentJSON{},
			ComponentsBottom: []ComponentJSON{},
			Powers:           []PowerJSON{},
			Grounds:          []GroundJSON{},
		},
	}
	d := &doc.Drawing

	for _, v := range s.Vias() {
		d.DrawingStrokes = append(d.DrawingStrokes, StrokeJSON{
			ID:      v.ID,
			Points:  []PointJSON{pointJSON(v.Center)},
			Color:   v.Color,
			Size:    v.Size,
			Type:    StrokeVia,
			ViaType: v.Type,
		})
	}
	for _, p := range s.Pads() {
		d.DrawingStrokes = append(d.DrawingStrokes, StrokeJSON{
			ID:      p.ID,
			Points:  []PointJSON{pointJSON(p.Center)},
			Color:   p.Color,
			Size:    p.Size,
			Layer:   string(p.Layer),
			Type:    StrokePad,
			PadType: p.Type,
		})
	}
	for _, t := range s.Traces() {
		pts := make([]PointJSON, len(t.Points))
		for i, p := range t.Points {
			pts[i] = pointJSON(p)
		}
		d.DrawingStrokes = append(d.DrawingStrokes, StrokeJSON{
			ID:     t.ID,
			Points: pts,
			Color:  t.Color,
			Size:   t.Size,
			Layer:  string(t.Layer),
			Type:   StrokeTrace,
		})
	}

	for _, c := range s.Components() {
		cj := ComponentJSON{
			ID:             c.ID,
			Designator:     c.Designator,
			PackageType:    c.Package,
			X:              c.Position.X,
			Y:              c.Position.Y,
			Width:          c.Width,
			Height:         c.Height,
			Layer:          string(c.Layer),
			PinCount:       c.PinCount,
			PinConnections: c.PinConnections,
		}
		if c.Layer == annotation.LayerBottom {
			d.ComponentsBottom = append(d.ComponentsBottom, cj)
		} else {
			d.ComponentsTop = append(d.ComponentsTop, cj)
		}
	}

	for _, p := range s.PowerNodes() {
		d.Powers = append(d.Powers, PowerJSON{
			ID:         p.ID,
			PointID:    p.Point.ID,
			X:          p.Point.X,
			Y:          p.Point.Y,
			Size:       p.Size,
			Color:      p.Color,
			PowerBusID: p.BusID,
			Layer:      string(p.Layer),
			Type:       p.Type,
		})
	}
	for _, g := range s.GroundNodes() {
		d.Grounds = append(d.Grounds, GroundJSON{
			ID:      g.ID,
			PointID: g.Point.ID,
			X:       g.Point.X,
			Y:       g.Point.Y,
			Size:    g.Size,
			Color:   g.Color,
			Layer:   string(g.Layer),
			Type:    g.Label,
		})
	}

	for _, b := range s.Buses() {
		doc.PowerBuses = append(doc.PowerBuses, BusJSON{ID: b.ID, Name: b.Name, Voltage: b.Voltage, Color: b.Color})
	}
	return doc
}

func pointJSON(p annotation.Point) PointJSON {
	return PointJSON{ID: p.ID, X: p.X, Y: p.Y}
}
