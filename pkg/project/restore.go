package project

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTracePCB/internal/logging"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Diagnostic describes a document entity that was dropped on load.
type Diagnostic struct {
	Entity string `json:"entity"` // kind:id
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	return d.Entity + ": " + d.Reason
}

// Report summarizes a load.
type Report struct {
	Diagnostics []Diagnostic

	// Synthesized counts connection points that had no Node ID and were
	// given a fresh one.
	Synthesized int
}

// restorer carries the state of one Restore call.
type restorer struct {
	alloc  *nodeid.Allocator
	log    *logrus.Entry
	store  *annotation.Store
	report Report
}

// Restore builds a store from doc. The allocator counter is raised above
// every Node ID in the document before any missing id is synthesized, so
// new ids never collide with loaded ones. Via and pad display types are
// recomputed before returning.
func (doc *Document) Restore(alloc *nodeid.Allocator, log *logrus.Entry) (*annotation.Store, Report, error) {
	if alloc == nil {
		return nil, Report{}, fmt.Errorf("project: restore: nil allocator")
	}
	r := &restorer{
		alloc: alloc,
		log:   logging.OrDiscard(log),
		store: annotation.New(),
	}

	alloc.SetCounter(doc.PointIDCounter)
	doc.observeIDs(alloc)

	buses := make([]annotation.PowerBus, 0, len(doc.PowerBuses))
	for _, b := range doc.PowerBuses {
		buses = append(buses, annotation.PowerBus{ID: b.ID, Name: b.Name, Voltage: b.Voltage, Color: b.Color})
	}
	r.store = r.store.SetBuses(buses)

	for _, s := range doc.Drawing.DrawingStrokes {
		r.stroke(s)
	}
	for _, p := range doc.Drawing.Powers {
		r.power(p)
	}
	for _, g := range doc.Drawing.Grounds {
		r.ground(g)
	}
	for _, c := range doc.Drawing.ComponentsTop {
		r.component(c, annotation.LayerTop)
	}
	for _, c := range doc.Drawing.ComponentsBottom {
		r.component(c, annotation.LayerBottom)
	}

	alloc.Observe(r.store.MaxNodeID())
	store := connectivity.Apply(r.store)

	for _, d := range r.report.Diagnostics {
		r.log.WithField("entity", d.Entity).Warn(d.Reason)
	}
	r.log.WithFields(logrus.Fields{
		"entities":    store.Len(),
		"dropped":     len(r.report.Diagnostics),
		"synthesized": r.report.Synthesized,
		"next_id":     alloc.Peek(),
	}).Debug("project restored")

	return store, r.report, nil
}

func (doc *Document) observeIDs(alloc *nodeid.Allocator) {
	for _, s := range doc.Drawing.DrawingStrokes {
		for _, p := range s.Points {
			alloc.Observe(p.ID)
		}
	}
	for _, p := range doc.Drawing.Powers {
		alloc.Observe(p.PointID)
	}
	for _, g := range doc.Drawing.Grounds {
		alloc.Observe(g.PointID)
	}
	for _, cs := range [][]ComponentJSON{doc.Drawing.ComponentsTop, doc.Drawing.ComponentsBottom} {
		for _, c := range cs {
			for _, v := range c.PinConnections {
				if id, ok := nodeid.Parse(v); ok {
					alloc.Observe(id)
				}
			}
		}
	}
}

func (r *restorer) drop(kind, id, format string, args ...any) {
	r.report.Diagnostics = append(r.report.Diagnostics, Diagnostic{
		Entity: kind + ":" + id,
		Reason: fmt.Sprintf(format, args...),
	})
}

// inRange rejects non-finite and negative coordinates.
func inRange(x, y float64) bool {
	p := geom.Pt(x, y)
	return p.IsFinite() && x >= 0 && y >= 0
}

// nodeID returns id, or a freshly allocated one for legacy points.
func (r *restorer) nodeID(id nodeid.ID) nodeid.ID {
	if id.Valid() {
		return id
	}
	r.report.Synthesized++
	return r.alloc.NextID()
}

func entityID(id string) string {
	if id == "" {
		return annotation.NewID()
	}
	return id
}

func (r *restorer) add(kind, id string, e annotation.Entity) {
	next, err := r.store.Add(e)
	if err != nil {
		r.drop(kind, id, "%v", err)
		return
	}
	r.store = next
}

func (r *restorer) stroke(s StrokeJSON) {
	id := entityID(s.ID)
	for _, p := range s.Points {
		if !inRange(p.X, p.Y) {
			r.drop(s.Type, id, "coordinate (%v, %v) out of range", p.X, p.Y)
			return
		}
	}

	switch s.Type {
	case StrokeVia, StrokePad:
		if len(s.Points) == 0 {
			r.drop(s.Type, id, "no center point")
			return
		}
		center := annotation.NodePoint(r.nodeID(s.Points[0].ID), geom.Pt(s.Points[0].X, s.Points[0].Y))
		if s.Type == StrokeVia {
			r.add(s.Type, id, annotation.Via{ID: id, Center: center, Size: s.Size, Color: s.Color})
			return
		}
		r.add(s.Type, id, annotation.Pad{ID: id, Center: center, Size: s.Size, Color: s.Color, Layer: annotation.Layer(s.Layer)})

	case StrokeTrace:
		if len(s.Points) < 2 {
			r.drop(s.Type, id, "trace with %d points", len(s.Points))
			return
		}
		pts := make([]annotation.Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = annotation.NodePoint(p.ID, geom.Pt(p.X, p.Y))
		}
		r.add(s.Type, id, annotation.Trace{ID: id, Points: pts, Layer: annotation.Layer(s.Layer), Size: s.Size, Color: s.Color})

	default:
		r.drop("stroke", id, "unknown stroke type %q", s.Type)
	}
}

func (r *restorer) power(p PowerJSON) {
	id := entityID(p.ID)
	if !inRange(p.X, p.Y) {
		r.drop("power", id, "coordinate (%v, %v) out of range", p.X, p.Y)
		return
	}
	r.add("power", id, annotation.PowerNode{
		ID:    id,
		Point: annotation.NodePoint(r.nodeID(p.PointID), geom.Pt(p.X, p.Y)),
		Layer: annotation.Layer(p.Layer),
		Size:  p.Size,
		Color: p.Color,
		BusID: p.PowerBusID,
		Type:  p.Type,
	})
}

func (r *restorer) ground(g GroundJSON) {
	id := entityID(g.ID)
	if !inRange(g.X, g.Y) {
		r.drop("ground", id, "coordinate (%v, %v) out of range", g.X, g.Y)
		return
	}
	r.add("ground", id, annotation.GroundNode{
		ID:    id,
		Point: annotation.NodePoint(r.nodeID(g.PointID), geom.Pt(g.X, g.Y)),
		Layer: annotation.Layer(g.Layer),
		Size:  g.Size,
		Color: g.Color,
		Label: g.Type,
	})
}

func (r *restorer) component(c ComponentJSON, layer annotation.Layer) {
	id := entityID(c.ID)
	if !inRange(c.X, c.Y) || !inRange(c.Width, c.Height) {
		r.drop("component", id, "geometry (%v, %v, %vx%v) out of range", c.X, c.Y, c.Width, c.Height)
		return
	}
	r.add("component", id, annotation.Component{
		ID:             id,
		Designator:     c.Designator,
		Package:        c.PackageType,
		Position:       geom.Quantize(geom.Pt(c.X, c.Y)),
		Width:          c.Width,
		Height:         c.Height,
		Layer:          layer,
		PinCount:       c.PinCount,
		PinConnections: c.PinConnections,
	})
}
