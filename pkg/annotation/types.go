// Package annotation holds the traced entities of a board: vias, pads,
// traces, power and ground symbols, and components.
//
// A Store is an immutable snapshot. Every mutating operation returns a new
// Store and leaves the receiver untouched, which is what makes undo/redo a
// matter of keeping old pointers around. Entities relate to each other only
// through Node IDs (see package nodeid); no entity owns another.
package annotation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Layer is a copper side of the board.
type Layer string

const (
	LayerTop    Layer = "top"
	LayerBottom Layer = "bottom"
)

// Valid reports whether l names a real board side.
func (l Layer) Valid() bool {
	return l == LayerTop || l == LayerBottom
}

// Kind tags an entity type.
type Kind int

const (
	KindVia Kind = iota
	KindPad
	KindTrace
	KindPower
	KindGround
	KindComponent
)

// Kinds lists every entity kind in canonical iteration order.
var Kinds = []Kind{KindVia, KindPad, KindTrace, KindPower, KindGround, KindComponent}

func (k Kind) String() string {
	switch k {
	case KindVia:
		return "via"
	case KindPad:
		return "pad"
	case KindTrace:
		return "trace"
	case KindPower:
		return "power"
	case KindGround:
		return "ground"
	case KindComponent:
		return "component"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// IsStroke reports whether k is drawn with the stroke tools (via, pad, trace).
func (k Kind) IsStroke() bool {
	return k == KindVia || k == KindPad || k == KindTrace
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// Point is a quantized world position, optionally carrying a Node ID.
type Point struct {
	ID nodeid.ID
	X  float64
	Y  float64
}

// NewPoint quantizes p into an id-less Point.
func NewPoint(p geom.Point) Point {
	q := geom.Quantize(p)
	return Point{X: q.X, Y: q.Y}
}

// NodePoint quantizes p into a Point carrying id.
func NodePoint(id nodeid.ID, p geom.Point) Point {
	pt := NewPoint(p)
	pt.ID = id
	return pt
}

// Pos returns the geometric position.
func (p Point) Pos() geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}

// Ref names a single entity in a Store.
type Ref struct {
	Kind Kind
	ID   string
}

func (r Ref) String() string {
	return r.Kind.String() + ":" + r.ID
}

// Entity is the closed set of annotation types: Via, Pad, Trace, PowerNode,
// GroundNode and Component. Entities are values; the Store copies them on the
// way in and out.
type Entity interface {
	EntityRef() Ref
	// EntityLayer returns the layer the entity lives on. Vias connect both
	// layers and return false.
	EntityLayer() (Layer, bool)
	sealed()
}

// Via is a plated through-hole joining top and bottom copper.
type Via struct {
	ID     string
	Center Point
	Size   float64 // diameter
	Color  string

	// Type is a display cache filled by the connectivity resolver.
	Type string
}

func (v Via) EntityRef() Ref             { return Ref{Kind: KindVia, ID: v.ID} }
func (v Via) EntityLayer() (Layer, bool) { return "", false }
func (Via) sealed()                      {}

// Pad is a single-layer connection point.
type Pad struct {
	ID     string
	Center Point
	Size   float64
	Color  string
	Layer  Layer

	// Type is a display cache filled by the connectivity resolver.
	Type string
}

func (p Pad) EntityRef() Ref             { return Ref{Kind: KindPad, ID: p.ID} }
func (p Pad) EntityLayer() (Layer, bool) { return p.Layer, true }
func (Pad) sealed()                      {}

// Trace is a copper polyline of at least two points.
type Trace struct {
	ID     string
	Points []Point
	Layer  Layer
	Size   float64 // stroke width
	Color  string
}

func (t Trace) EntityRef() Ref             { return Ref{Kind: KindTrace, ID: t.ID} }
func (t Trace) EntityLayer() (Layer, bool) { return t.Layer, true }
func (Trace) sealed()                      {}

// Positions returns the geometric positions of the trace points.
func (t Trace) Positions() []geom.Point {
	out := make([]geom.Point, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Pos()
	}
	return out
}

func (t Trace) clone() Trace {
	t.Points = append([]Point(nil), t.Points...)
	return t
}

// PowerNode marks a Node ID as a power rail belonging to a PowerBus.
type PowerNode struct {
	ID    string
	Point Point
	Layer Layer
	Size  float64
	Color string
	BusID string

	// Type is the node's own label, used when its bus no longer exists.
	Type string
}

func (p PowerNode) EntityRef() Ref             { return Ref{Kind: KindPower, ID: p.ID} }
func (p PowerNode) EntityLayer() (Layer, bool) { return p.Layer, p.Layer != "" }
func (PowerNode) sealed()                      {}

// DefaultGroundLabel is used for ground nodes without an explicit label.
const DefaultGroundLabel = "GND"

// GroundNode marks a Node ID as ground.
type GroundNode struct {
	ID    string
	Point Point
	Layer Layer // optional
	Size  float64
	Color string
	Label string
}

func (g GroundNode) EntityRef() Ref             { return Ref{Kind: KindGround, ID: g.ID} }
func (g GroundNode) EntityLayer() (Layer, bool) { return g.Layer, g.Layer != "" }
func (GroundNode) sealed()                      {}

// DisplayLabel returns Label or DefaultGroundLabel.
func (g GroundNode) DisplayLabel() string {
	if g.Label == "" {
		return DefaultGroundLabel
	}
	return g.Label
}

// Component is a placed part whose pins are wired to Node IDs.
type Component struct {
	ID         string
	Designator string // e.g. "U1"
	Package    string // e.g. "DIP-14"
	Position   geom.Point
	Width      float64
	Height     float64
	Layer      Layer
	PinCount   int

	// PinConnections is indexed by pin number - 1. Each entry is empty or the
	// decimal Node ID the pin is wired to.
	PinConnections []string
}

func (c Component) EntityRef() Ref             { return Ref{Kind: KindComponent, ID: c.ID} }
func (c Component) EntityLayer() (Layer, bool) { return c.Layer, true }
func (Component) sealed()                      {}

// Bounds returns the component outline centered on Position.
func (c Component) Bounds() geom.Rect {
	hw, hh := c.Width/2, c.Height/2
	return geom.Rect{
		Min: geom.Point{X: c.Position.X - hw, Y: c.Position.Y - hh},
		Max: geom.Point{X: c.Position.X + hw, Y: c.Position.Y + hh},
	}
}

func (c Component) clone() Component {
	c.PinConnections = append([]string(nil), c.PinConnections...)
	return c
}

// PowerBus is a named supply rail, e.g. "VCC" at "+5V".
type PowerBus struct {
	ID      string
	Name    string
	Voltage string
	Color   string
}

// PinRef points at a single component pin. Pin is 1-based.
type PinRef struct {
	ComponentID string
	Designator  string
	Pin         int
	Value       string
}

func cloneEntity(e Entity) Entity {
	switch v := e.(type) {
	case Trace:
		return v.clone()
	case Component:
		return v.clone()
	default:
		return e
	}
}
