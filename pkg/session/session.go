package session

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTracePCB/internal/logging"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/edit"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/project"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

// Mode is the active tool.
type Mode int

const (
	ModeSelect Mode = iota
	ModeVia
	ModePad
	ModeTrace
	ModePower
	ModeGround
	ModeErase
)

var modeNames = map[Mode]string{
	ModeSelect: "select",
	ModeVia:    "via",
	ModePad:    "pad",
	ModeTrace:  "trace",
	ModePower:  "power",
	ModeGround: "ground",
	ModeErase:  "erase",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Session is one open board. It is not safe for concurrent use; every call
// runs to completion and leaves a new store snapshot behind.
type Session struct {
	cfg   *Config
	log   *logrus.Entry
	store *annotation.Store
	alloc *nodeid.Allocator

	Viewport   geom.Viewport
	Layer      annotation.Layer // layer for new pads, traces and components
	Locks      edit.Locks
	Visibility query.Visibility

	// Bus is the power bus assigned to new power nodes.
	Bus string

	mode      Mode
	selection edit.Selection
	trace     *edit.TraceBuilder
	drag      edit.DragGesture
	history   *History

	// eraseBase is the snapshot before the current eraser stroke.
	eraseBase *annotation.Store
}

// New creates an empty session. A nil cfg uses DefaultConfig; a nil log
// discards output.
func New(cfg *Config, log *logrus.Entry) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:      cfg,
		log:      logging.OrDiscard(log),
		store:    annotation.New(),
		alloc:    nodeid.NewAllocator(nodeid.DefaultSeed),
		Viewport: geom.NewViewport(cfg.ContentBorder),
		Layer:    annotation.LayerTop,
		Locks:    edit.Locks{},
		history:  NewHistory(cfg.HistoryLimit),
	}, nil
}

// Config returns the session configuration.
func (s *Session) Config() *Config { return s.cfg }

// Store returns the current snapshot.
func (s *Session) Store() *annotation.Store { return s.store }

// Allocator returns the Node ID allocator.
func (s *Session) Allocator() *nodeid.Allocator { return s.alloc }

// Selection returns the current selection.
func (s *Session) Selection() edit.Selection { return s.selection }

// Mode returns the active tool.
func (s *Session) Mode() Mode { return s.mode }

// Tolerance returns the pick tolerance at the current zoom.
func (s *Session) Tolerance() float64 {
	return s.cfg.HitTolerance(s.Viewport.Scale)
}

// commit installs next as the current snapshot, recomputes display types and
// records the previous snapshot for undo. Unchanged snapshots are ignored.
func (s *Session) commit(next *annotation.Store, op string) {
	if next == s.store {
		return
	}
	s.history.Push(s.store)
	s.install(next)
	s.log.WithField("op", op).Debug("store updated")
}

func (s *Session) install(next *annotation.Store) {
	s.store = connectivity.Apply(next)
	s.selection = s.selection.Prune(s.store)
}

// SetMode switches tools. A trace in progress is finished first.
func (s *Session) SetMode(m Mode) error {
	var err error
	if s.trace != nil && s.trace.Active() {
		_, _, err = s.FinishTrace()
	}
	if s.mode != m {
		s.drag.Cancel()
		s.log.WithFields(logrus.Fields{"from": s.mode, "to": m}).Debug("mode changed")
	}
	s.mode = m
	return err
}

// Snap resolves p to the nearest connection point of the given kinds.
func (s *Session) Snap(p geom.Point, kinds query.SnapKinds) query.SnapResult {
	opts := query.SnapOptions{Kinds: kinds, Radius: s.cfg.SnapRadius}
	if s.cfg.SnapSameLayer {
		opts.Layer = s.Layer
	}
	return query.Snap(s.store, p, opts)
}

// PlaceVia adds a via with a fresh Node ID at p.
func (s *Session) PlaceVia(p geom.Point) (annotation.Via, error) {
	v := annotation.Via{
		ID:     annotation.NewID(),
		Center: annotation.NodePoint(s.alloc.NextID(), p),
		Size:   s.cfg.ViaSize,
		Color:  s.cfg.defaultColor(annotation.KindVia),
	}
	next, err := s.store.Add(v)
	if err != nil {
		return annotation.Via{}, fmt.Errorf("session: place via: %w", err)
	}
	s.commit(next, "place via")
	return v, nil
}

// PlacePad adds a pad with a fresh Node ID at p on the active layer.
func (s *Session) PlacePad(p geom.Point) (annotation.Pad, error) {
	pad := annotation.Pad{
		ID:     annotation.NewID(),
		Center: annotation.NodePoint(s.alloc.NextID(), p),
		Size:   s.cfg.PadSize,
		Color:  s.cfg.defaultColor(annotation.KindPad),
		Layer:  s.Layer,
	}
	next, err := s.store.Add(pad)
	if err != nil {
		return annotation.Pad{}, fmt.Errorf("session: place pad: %w", err)
	}
	s.commit(next, "place pad")
	return pad, nil
}

// symbolPoint snaps a power or ground symbol onto an existing via or pad.
// Off any connection point it gets a fresh Node ID.
func (s *Session) symbolPoint(p geom.Point) annotation.Point {
	res := s.Snap(p, query.SnapVias|query.SnapPads)
	if res.Snapped {
		return res.Point
	}
	return annotation.NodePoint(s.alloc.NextID(), p)
}

// PlacePower adds a power node for the active bus at p. It fails with a
// *annotation.ConflictError when the Node ID is already power or ground.
func (s *Session) PlacePower(p geom.Point) (annotation.PowerNode, error) {
	pt := s.symbolPoint(p)
	node := annotation.PowerNode{
		ID:    annotation.NewID(),
		Point: pt,
		Size:  s.cfg.SymbolSize,
		Color: s.cfg.defaultColor(annotation.KindPower),
		BusID: s.Bus,
	}
	if b, ok := s.store.Bus(s.Bus); ok {
		node.Type = connectivity.PowerLabel(b.Voltage)
	}
	next, err := s.store.Add(node)
	if err != nil {
		s.logConflict(err, pt.ID)
		return annotation.PowerNode{}, fmt.Errorf("session: place power: %w", err)
	}
	s.commit(next, "place power")
	return node, nil
}

// PlaceGround adds a ground node at p.
func (s *Session) PlaceGround(p geom.Point, label string) (annotation.GroundNode, error) {
	pt := s.symbolPoint(p)
	node := annotation.GroundNode{
		ID:    annotation.NewID(),
		Point: pt,
		Size:  s.cfg.SymbolSize,
		Color: s.cfg.defaultColor(annotation.KindGround),
		Label: label,
	}
	next, err := s.store.Add(node)
	if err != nil {
		s.logConflict(err, pt.ID)
		return annotation.GroundNode{}, fmt.Errorf("session: place ground: %w", err)
	}
	s.commit(next, "place ground")
	return node, nil
}

func (s *Session) logConflict(err error, id nodeid.ID) {
	var ce *annotation.ConflictError
	if errors.As(err, &ce) {
		s.log.WithFields(logrus.Fields{
			"node_id":  id,
			"kind":     ce.Attempted,
			"existing": ce.ExistingID,
		}).Warn("node id already claimed")
	}
}

// PlaceComponent adds a component centered on p on the active layer.
func (s *Session) PlaceComponent(designator, pkg string, p geom.Point, width, height float64, pins int) (annotation.Component, error) {
	c := annotation.Component{
		ID:         annotation.NewID(),
		Designator: designator,
		Package:    pkg,
		Position:   geom.Quantize(p),
		Width:      width,
		Height:     height,
		Layer:      s.Layer,
		PinCount:   pins,
	}
	next, err := s.store.Add(c)
	if err != nil {
		return annotation.Component{}, fmt.Errorf("session: place component %s: %w", designator, err)
	}
	s.commit(next, "place component")
	return c, nil
}

// ConnectPin wires a component pin to a Node ID.
func (s *Session) ConnectPin(componentID string, pin int, id nodeid.ID) error {
	if s.Locks.Locked(annotation.KindComponent) {
		return &edit.LockViolationError{Op: "connect pin", Kinds: []annotation.Kind{annotation.KindComponent}}
	}
	next, err := s.store.ConnectPin(componentID, pin, id)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.commit(next, "connect pin")
	return nil
}

// AddBus adds a power bus.
func (s *Session) AddBus(name, voltage, color string) (annotation.PowerBus, error) {
	if _, err := connectivity.ParseVoltage(voltage); err != nil {
		return annotation.PowerBus{}, fmt.Errorf("session: add bus %s: %w", name, err)
	}
	b := annotation.PowerBus{ID: annotation.NewID(), Name: name, Voltage: voltage, Color: color}
	next, err := s.store.AddBus(b)
	if err != nil {
		return annotation.PowerBus{}, fmt.Errorf("session: %w", err)
	}
	s.commit(next, "add bus")
	return b, nil
}

// UpdateBus replaces a bus. Vias and pads on its power nodes are relabeled.
func (s *Session) UpdateBus(b annotation.PowerBus) error {
	if _, err := connectivity.ParseVoltage(b.Voltage); err != nil {
		return fmt.Errorf("session: update bus %s: %w", b.Name, err)
	}
	next, err := s.store.UpdateBus(b)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.commit(next, "update bus")
	return nil
}

// RemoveBus deletes a bus. Its power nodes keep their own type label.
func (s *Session) RemoveBus(id string) error {
	next, err := s.store.RemoveBus(id)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.commit(next, "remove bus")
	return nil
}

// TracePoint appends p to the trace in progress, starting one if needed.
// The point snaps to nearby connection points and takes their Node ID.
func (s *Session) TracePoint(p geom.Point) annotation.Point {
	if s.trace == nil || !s.trace.Active() {
		s.trace = edit.NewTraceBuilder(s.Layer, s.cfg.TraceSize, s.cfg.defaultColor(annotation.KindTrace))
	}
	pt := s.Snap(p, query.SnapAll).Point
	s.trace.Append(pt)
	return pt
}

// TracePoints returns the points of the trace in progress.
func (s *Session) TracePoints() []annotation.Point {
	if s.trace == nil {
		return nil
	}
	return s.trace.Points()
}

// FinishTrace commits the trace in progress. The second result is false
// when there was nothing to commit.
func (s *Session) FinishTrace() (annotation.Trace, bool, error) {
	if s.trace == nil {
		return annotation.Trace{}, false, nil
	}
	t, ok := s.trace.Finish(annotation.NewID())
	if !ok {
		return annotation.Trace{}, false, nil
	}
	next, err := s.store.Add(t)
	if errors.Is(err, annotation.ErrInvalidGeometry) {
		s.log.WithField("entity", t.ID).Debug("trace discarded")
		return annotation.Trace{}, false, nil
	}
	if err != nil {
		return annotation.Trace{}, false, fmt.Errorf("session: finish trace: %w", err)
	}
	s.commit(next, "add trace")
	return t, true, nil
}

// CancelTrace drops the trace in progress.
func (s *Session) CancelTrace() {
	if s.trace != nil {
		s.trace.Cancel()
	}
}

// Relayer moves an entity to another layer.
func (s *Session) Relayer(ref annotation.Ref, layer annotation.Layer) error {
	if s.Locks.Locked(ref.Kind) {
		return &edit.LockViolationError{Op: "relayer", Kinds: []annotation.Kind{ref.Kind}}
	}
	next, err := s.store.Relayer(ref, layer)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.commit(next, "relayer")
	return nil
}

// Undo restores the previous snapshot.
func (s *Session) Undo() bool {
	prev, ok := s.history.Undo(s.store)
	if ok {
		s.install(prev)
	}
	return ok
}

// Redo reapplies the last undone change.
func (s *Session) Redo() bool {
	next, ok := s.history.Redo(s.store)
	if ok {
		s.install(next)
	}
	return ok
}

// Reset discards everything and starts an empty board.
func (s *Session) Reset() {
	s.store = annotation.New()
	s.alloc.SetCounter(nodeid.DefaultSeed)
	s.selection = edit.Selection{}
	s.history.Clear()
	s.CancelTrace()
	s.drag.Cancel()
	s.eraseBase = nil
	s.log.Debug("session reset")
}

// Load replaces the board with the project at path.
func (s *Session) Load(path string) (project.Report, error) {
	alloc := nodeid.NewAllocator(nodeid.DefaultSeed)
	store, report, err := project.LoadFile(path, alloc, s.log)
	if err != nil {
		return report, err
	}
	s.Reset()
	s.alloc.SetCounter(alloc.Peek())
	s.store = store
	s.log.WithFields(logrus.Fields{"path": path, "entities": store.Len()}).Info("project loaded")
	return report, nil
}

// Save writes the board to path.
func (s *Session) Save(path string) error {
	if err := project.SaveFile(path, s.store, s.alloc.Peek()); err != nil {
		return err
	}
	s.log.WithField("path", path).Info("project saved")
	return nil
}
