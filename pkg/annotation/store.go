package annotation

import (
	"fmt"
	"slices"
	"sort"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Store is an immutable snapshot of all annotations on a board. The zero
// value is an empty store. Methods that change data return a new *Store and
// never modify the receiver or any slice it shares with other snapshots.
type Store struct {
	vias       []Via
	pads       []Pad
	traces     []Trace
	powers     []PowerNode
	grounds    []GroundNode
	components []Component
	buses      []PowerBus
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) shallow() *Store {
	c := *s
	return &c
}

// appendCopy appends into a fresh backing array so snapshots never share
// spare capacity.
func appendCopy[T any](xs []T, v T) []T {
	out := make([]T, len(xs), len(xs)+1)
	copy(out, xs)
	return append(out, v)
}

func replaceAt[T any](xs []T, i int, v T) []T {
	out := slices.Clone(xs)
	out[i] = v
	return out
}

func removeAt[T any](xs []T, i int) []T {
	out := make([]T, 0, len(xs)-1)
	out = append(out, xs[:i]...)
	return append(out, xs[i+1:]...)
}

func indexOf[T Entity](xs []T, id string) int {
	for i, x := range xs {
		if x.EntityRef().ID == id {
			return i
		}
	}
	return -1
}

// Add inserts a new entity. Traces with fewer than two points are rejected
// with ErrInvalidGeometry and the receiver is returned unchanged. Power and
// ground nodes are checked against both registries and rejected with a
// *ConflictError when their Node ID is already claimed.
func (s *Store) Add(e Entity) (*Store, error) {
	if e == nil {
		return s, fmt.Errorf("annotation: add: nil entity")
	}
	ref := e.EntityRef()
	if ref.ID == "" {
		return s, fmt.Errorf("annotation: add %s: empty id", ref.Kind)
	}
	if _, ok := s.Lookup(ref); ok {
		return s, fmt.Errorf("annotation: add %s: %w", ref, ErrDuplicateID)
	}
	if err := s.validate(e); err != nil {
		return s, fmt.Errorf("annotation: add %s: %w", ref, err)
	}

	next := s.shallow()
	switch v := e.(type) {
	case Via:
		next.vias = appendCopy(s.vias, v)
	case Pad:
		next.pads = appendCopy(s.pads, v)
	case Trace:
		next.traces = appendCopy(s.traces, v.clone())
	case PowerNode:
		next.powers = appendCopy(s.powers, v)
	case GroundNode:
		next.grounds = appendCopy(s.grounds, v)
	case Component:
		next.components = appendCopy(s.components, normalizeComponent(v))
	}
	return next, nil
}

// Update replaces an existing entity with the same Ref. A pad's layer cannot
// change here; use Relayer.
func (s *Store) Update(e Entity) (*Store, error) {
	if e == nil {
		return s, fmt.Errorf("annotation: update: nil entity")
	}
	ref := e.EntityRef()
	if err := s.validate(e); err != nil {
		return s, fmt.Errorf("annotation: update %s: %w", ref, err)
	}

	next := s.shallow()
	switch v := e.(type) {
	case Via:
		i := indexOf(s.vias, v.ID)
		if i < 0 {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrNotFound)
		}
		next.vias = replaceAt(s.vias, i, v)
	case Pad:
		i := indexOf(s.pads, v.ID)
		if i < 0 {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrNotFound)
		}
		if s.pads[i].Layer != v.Layer {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrLayerImmutable)
		}
		next.pads = replaceAt(s.pads, i, v)
	case Trace:
		i := indexOf(s.traces, v.ID)
		if i < 0 {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrNotFound)
		}
		next.traces = replaceAt(s.traces, i, v.clone())
	case PowerNode:
		i := indexOf(s.powers, v.ID)
		if i < 0 {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrNotFound)
		}
		next.powers = replaceAt(s.powers, i, v)
	case GroundNode:
		i := indexOf(s.grounds, v.ID)
		if i < 0 {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrNotFound)
		}
		next.grounds = replaceAt(s.grounds, i, v)
	case Component:
		i := indexOf(s.components, v.ID)
		if i < 0 {
			return s, fmt.Errorf("annotation: update %s: %w", ref, ErrNotFound)
		}
		next.components = replaceAt(s.components, i, normalizeComponent(v))
	}
	return next, nil
}

// Remove deletes one entity.
func (s *Store) Remove(ref Ref) (*Store, error) {
	if _, ok := s.Lookup(ref); !ok {
		return s, fmt.Errorf("annotation: remove %s: %w", ref, ErrNotFound)
	}
	return s.RemoveMany([]Ref{ref}), nil
}

// RemoveMany deletes every entity named in refs. Unknown refs are ignored,
// so removing the same entity twice is a no-op. When nothing matches the
// receiver itself is returned.
//
// Component pin connections that referenced a removed Node ID are left as
// they are. Disconnecting an endpoint does not clear downstream wiring; use
// DanglingPins to find such entries.
func (s *Store) RemoveMany(refs []Ref) *Store {
	if len(refs) == 0 {
		return s
	}
	drop := make(map[Ref]bool, len(refs))
	for _, r := range refs {
		drop[r] = true
	}

	next := s.shallow()
	removed := 0
	next.vias, removed = filterOut(s.vias, drop, removed)
	next.pads, removed = filterOut(s.pads, drop, removed)
	next.traces, removed = filterOut(s.traces, drop, removed)
	next.powers, removed = filterOut(s.powers, drop, removed)
	next.grounds, removed = filterOut(s.grounds, drop, removed)
	next.components, removed = filterOut(s.components, drop, removed)

	if removed == 0 {
		return s
	}
	return next
}

func filterOut[T Entity](xs []T, drop map[Ref]bool, removed int) ([]T, int) {
	hit := false
	for _, x := range xs {
		if drop[x.EntityRef()] {
			hit = true
			break
		}
	}
	if !hit {
		return xs, removed
	}
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if drop[x.EntityRef()] {
			removed++
			continue
		}
		out = append(out, x)
	}
	return out, removed
}

// Relayer moves an entity to another layer. This is the only way to change
// a pad's layer. Vias have no layer and return ErrNoLayer.
func (s *Store) Relayer(ref Ref, layer Layer) (*Store, error) {
	if !layer.Valid() {
		return s, fmt.Errorf("annotation: relayer %s to %q: %w", ref, layer, ErrInvalidLayer)
	}
	e, ok := s.Lookup(ref)
	if !ok {
		return s, fmt.Errorf("annotation: relayer %s: %w", ref, ErrNotFound)
	}

	next := s.shallow()
	switch v := e.(type) {
	case Via:
		return s, fmt.Errorf("annotation: relayer %s: %w", ref, ErrNoLayer)
	case Pad:
		v.Layer = layer
		next.pads = replaceAt(s.pads, indexOf(s.pads, v.ID), v)
	case Trace:
		v.Layer = layer
		next.traces = replaceAt(s.traces, indexOf(s.traces, v.ID), v)
	case PowerNode:
		v.Layer = layer
		next.powers = replaceAt(s.powers, indexOf(s.powers, v.ID), v)
	case GroundNode:
		v.Layer = layer
		next.grounds = replaceAt(s.grounds, indexOf(s.grounds, v.ID), v)
	case Component:
		v.Layer = layer
		next.components = replaceAt(s.components, indexOf(s.components, v.ID), v)
	}
	return next, nil
}

// Lookup returns a copy of the entity named by ref.
func (s *Store) Lookup(ref Ref) (Entity, bool) {
	switch ref.Kind {
	case KindVia:
		if i := indexOf(s.vias, ref.ID); i >= 0 {
			return s.vias[i], true
		}
	case KindPad:
		if i := indexOf(s.pads, ref.ID); i >= 0 {
			return s.pads[i], true
		}
	case KindTrace:
		if i := indexOf(s.traces, ref.ID); i >= 0 {
			return s.traces[i].clone(), true
		}
	case KindPower:
		if i := indexOf(s.powers, ref.ID); i >= 0 {
			return s.powers[i], true
		}
	case KindGround:
		if i := indexOf(s.grounds, ref.ID); i >= 0 {
			return s.grounds[i], true
		}
	case KindComponent:
		if i := indexOf(s.components, ref.ID); i >= 0 {
			return s.components[i].clone(), true
		}
	}
	return nil, false
}

// Entities returns every entity in canonical order: vias, pads, traces,
// power nodes, ground nodes, components. Queries that break ties by
// iteration order rely on this order.
func (s *Store) Entities() []Entity {
	out := make([]Entity, 0, s.Len())
	for _, k := range Kinds {
		out = append(out, s.EntitiesOf(k)...)
	}
	return out
}

// EntitiesOf returns the entities of a single kind.
func (s *Store) EntitiesOf(k Kind) []Entity {
	var out []Entity
	switch k {
	case KindVia:
		for _, v := range s.vias {
			out = append(out, v)
		}
	case KindPad:
		for _, v := range s.pads {
			out = append(out, v)
		}
	case KindTrace:
		for _, v := range s.traces {
			out = append(out, v.clone())
		}
	case KindPower:
		for _, v := range s.powers {
			out = append(out, v)
		}
	case KindGround:
		for _, v := range s.grounds {
			out = append(out, v)
		}
	case KindComponent:
		for _, v := range s.components {
			out = append(out, v.clone())
		}
	}
	return out
}

// Len returns the total number of entities (buses excluded).
func (s *Store) Len() int {
	return len(s.vias) + len(s.pads) + len(s.traces) +
		len(s.powers) + len(s.grounds) + len(s.components)
}

// Count returns the number of entities of kind k.
func (s *Store) Count(k Kind) int {
	switch k {
	case KindVia:
		return len(s.vias)
	case KindPad:
		return len(s.pads)
	case KindTrace:
		return len(s.traces)
	case KindPower:
		return len(s.powers)
	case KindGround:
		return len(s.grounds)
	case KindComponent:
		return len(s.components)
	}
	return 0
}

func (s *Store) Vias() []Via               { return slices.Clone(s.vias) }
func (s *Store) Pads() []Pad               { return slices.Clone(s.pads) }
func (s *Store) PowerNodes() []PowerNode   { return slices.Clone(s.powers) }
func (s *Store) GroundNodes() []GroundNode { return slices.Clone(s.grounds) }

// Traces returns deep copies of all traces.
func (s *Store) Traces() []Trace {
	out := make([]Trace, len(s.traces))
	for i, t := range s.traces {
		out[i] = t.clone()
	}
	return out
}

// Components returns deep copies of all components.
func (s *Store) Components() []Component {
	out := make([]Component, len(s.components))
	for i, c := range s.components {
		out[i] = c.clone()
	}
	return out
}

// PowerAt returns the power node registered on id.
func (s *Store) PowerAt(id nodeid.ID) (PowerNode, bool) {
	for _, p := range s.powers {
		if p.Point.ID == id {
			return p, true
		}
	}
	return PowerNode{}, false
}

// GroundAt returns the ground node registered on id.
func (s *Store) GroundAt(id nodeid.ID) (GroundNode, bool) {
	for _, g := range s.grounds {
		if g.Point.ID == id {
			return g, true
		}
	}
	return GroundNode{}, false
}

// NodeIDs returns every Node ID carried by any entity point, ascending.
func (s *Store) NodeIDs() []nodeid.ID {
	set := s.nodeSet()
	ids := make([]nodeid.ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MaxNodeID returns the highest Node ID in the store, or nodeid.None. Ids
// referenced only by component pin connections count too.
func (s *Store) MaxNodeID() nodeid.ID {
	highest := nodeid.None
	for id := range s.nodeSet() {
		if id > highest {
			highest = id
		}
	}
	for _, c := range s.components {
		for _, v := range c.PinConnections {
			if id, ok := nodeid.Parse(v); ok && id > highest {
				highest = id
			}
		}
	}
	return highest
}

func (s *Store) nodeSet() map[nodeid.ID]bool {
	set := make(map[nodeid.ID]bool)
	add := func(id nodeid.ID) {
		if id.Valid() {
			set[id] = true
		}
	}
	for _, v := range s.vias {
		add(v.Center.ID)
	}
	for _, p := range s.pads {
		add(p.Center.ID)
	}
	for _, t := range s.traces {
		for _, p := range t.Points {
			add(p.ID)
		}
	}
	for _, p := range s.powers {
		add(p.Point.ID)
	}
	for _, g := range s.grounds {
		add(g.Point.ID)
	}
	return set
}

// ConnectPin wires a component pin (1-based) to a Node ID. Passing
// nodeid.None clears the connection.
func (s *Store) ConnectPin(componentID string, pin int, id nodeid.ID) (*Store, error) {
	i := indexOf(s.components, componentID)
	if i < 0 {
		return s, fmt.Errorf("annotation: connect pin on component %s: %w", componentID, ErrNotFound)
	}
	c := s.components[i].clone()
	if pin < 1 || pin > c.PinCount {
		return s, fmt.Errorf("annotation: connect pin %d on %s (%d pins): %w",
			pin, c.Designator, c.PinCount, ErrPinRange)
	}
	if id.Valid() {
		c.PinConnections[pin-1] = id.String()
	} else {
		c.PinConnections[pin-1] = ""
	}

	next := s.shallow()
	next.components = replaceAt(s.components, i, c)
	return next, nil
}

// DanglingPins lists component pin connections whose Node ID no longer
// exists on any entity, or that do not parse as a Node ID. They are reported
// rather than cleared.
func (s *Store) DanglingPins() []PinRef {
	nodes := s.nodeSet()
	var out []PinRef
	for _, c := range s.components {
		for i, v := range c.PinConnections {
			if v == "" {
				continue
			}
			if id, ok := nodeid.Parse(v); ok && nodes[id] {
				continue
			}
			out = append(out, PinRef{
				ComponentID: c.ID,
				Designator:  c.Designator,
				Pin:         i + 1,
				Value:       v,
			})
		}
	}
	return out
}

// WithDisplayTypes returns a snapshot whose via and pad Type caches are set
// to label(center node id). The receiver is returned when nothing changes.
func (s *Store) WithDisplayTypes(label func(nodeid.ID) string) *Store {
	changed := false

	vias := slices.Clone(s.vias)
	for i := range vias {
		if t := label(vias[i].Center.ID); t != vias[i].Type {
			vias[i].Type = t
			changed = true
		}
	}
	pads := slices.Clone(s.pads)
	for i := range pads {
		if t := label(pads[i].Center.ID); t != pads[i].Type {
			pads[i].Type = t
			changed = true
		}
	}

	if !changed {
		return s
	}
	next := s.shallow()
	next.vias = vias
	next.pads = pads
	return next
}

// validate checks per-kind invariants. For power and ground nodes it also
// enforces the single-claim rule, ignoring the entity's own previous state.
func (s *Store) validate(e Entity) error {
	switch v := e.(type) {
	case Via:
		if !v.Center.ID.Valid() {
			return ErrMissingNodeID
		}
	case Pad:
		if !v.Center.ID.Valid() {
			return ErrMissingNodeID
		}
		if !v.Layer.Valid() {
			return ErrInvalidLayer
		}
	case Trace:
		if len(v.Points) < 2 {
			return ErrInvalidGeometry
		}
		if !v.Layer.Valid() {
			return ErrInvalidLayer
		}
	case PowerNode:
		if !v.Point.ID.Valid() {
			return ErrMissingNodeID
		}
		if v.Layer != "" && !v.Layer.Valid() {
			return ErrInvalidLayer
		}
		return s.checkClaim(v.Point.ID, KindPower, v.ID)
	case GroundNode:
		if !v.Point.ID.Valid() {
			return ErrMissingNodeID
		}
		if v.Layer != "" && !v.Layer.Valid() {
			return ErrInvalidLayer
		}
		return s.checkClaim(v.Point.ID, KindGround, v.ID)
	case Component:
		if !v.Layer.Valid() {
			return ErrInvalidLayer
		}
		if v.PinCount < 0 {
			return ErrPinRange
		}
	}
	return nil
}

// CheckClaim reports whether a new power or ground node may be placed on id.
// A Node ID holds at most one power node and one ground node, and never both.
func (s *Store) CheckClaim(id nodeid.ID, kind Kind) error {
	return s.checkClaim(id, kind, "")
}

func (s *Store) checkClaim(id nodeid.ID, kind Kind, self string) error {
	for _, p := range s.powers {
		if p.Point.ID == id && p.ID != self {
			return &ConflictError{NodeID: id, Attempted: kind, Existing: KindPower, ExistingID: p.ID}
		}
	}
	for _, g := range s.grounds {
		if g.Point.ID == id && g.ID != self {
			return &ConflictError{NodeID: id, Attempted: kind, Existing: KindGround, ExistingID: g.ID}
		}
	}
	return nil
}

func normalizeComponent(c Component) Component {
	if c.PinCount < len(c.PinConnections) {
		c.PinCount = len(c.PinConnections)
	}
	pins := make([]string, c.PinCount)
	copy(pins, c.PinConnections)
	c.PinConnections = pins
	return c
}
