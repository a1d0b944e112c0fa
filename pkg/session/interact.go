package session

import (
	"gioui.org/f32"
	"gioui.org/io/key"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/edit"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

// Select applies a finished drag rectangle in world coordinates.
func (s *Session) Select(drag geom.Rect, additive bool) edit.Selection {
	s.selection = edit.Select(s.store, s.selection, drag, edit.SelectOptions{
		Tolerance: s.Tolerance(),
		TinyDrag:  s.cfg.TinyDrag,
		Additive:  additive,
		Filter:    s.Visibility,
	})
	return s.selection
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.selection = edit.Selection{}
}

// EraseAt applies one eraser sample at p. Inside an eraser stroke the undo
// step is recorded when the stroke ends.
func (s *Session) EraseAt(p geom.Point) edit.EraseResult {
	res := edit.Erase(s.store, p, s.cfg.BrushSize, s.Locks, s.Visibility)
	if len(res.Removed) > 0 {
		s.log.WithField("removed", len(res.Removed)).Debug("erased")
	}
	if s.eraseBase != nil {
		s.install(res.Store)
	} else {
		s.commit(res.Store, "erase")
	}
	return res
}

// DeleteSelected removes the unlocked part of the selection.
func (s *Session) DeleteSelected() error {
	next, kept, err := edit.DeleteSelection(s.store, s.selection, s.Locks)
	s.commit(next, "delete")
	s.selection = kept
	return err
}

// MoveSelected translates the selection by d.
func (s *Session) MoveSelected(d geom.Point) error {
	next, err := edit.MoveSelection(s.store, s.selection, d, s.Locks)
	s.commit(next, "move")
	return err
}

// ResizeSelected sets the size of the selection.
func (s *Session) ResizeSelected(size float64) error {
	next, err := edit.ResizeSelection(s.store, s.selection, size, s.Locks)
	s.commit(next, "resize")
	return err
}

// RecolorSelected sets the color of the selection.
func (s *Session) RecolorSelected(color string) error {
	next, err := edit.RecolorSelection(s.store, s.selection, color, s.Locks)
	s.commit(next, "recolor")
	return err
}

// PointerPress handles a primary button press at a screen position.
func (s *Session) PointerPress(pos f32.Point, mods key.Modifiers) error {
	p := s.Viewport.ScreenToWorld(pos)
	var err error
	switch s.mode {
	case ModeSelect:
		s.drag.Press(pos, mods)
	case ModeErase:
		s.eraseBase = s.store
		s.EraseAt(p)
	case ModeVia:
		_, err = s.PlaceVia(p)
	case ModePad:
		_, err = s.PlacePad(p)
	case ModeTrace:
		s.TracePoint(p)
	case ModePower:
		_, err = s.PlacePower(p)
	case ModeGround:
		_, err = s.PlaceGround(p, "")
	}
	return err
}

// PointerMove handles pointer motion with the button held.
func (s *Session) PointerMove(pos f32.Point) {
	switch s.mode {
	case ModeSelect:
		s.drag.Move(pos)
	case ModeTrace:
		if s.trace != nil && s.trace.Active() {
			s.TracePoint(s.Viewport.ScreenToWorld(pos))
		}
	case ModeErase:
		if s.eraseBase != nil {
			s.EraseAt(s.Viewport.ScreenToWorld(pos))
		}
	}
}

// PointerRelease handles the button release. In trace mode it ends the
// stroke: a lone press becomes a dot-trace.
func (s *Session) PointerRelease(pos f32.Point) error {
	switch s.mode {
	case ModeSelect:
		if res, ok := s.drag.Release(pos, s.Viewport); ok {
			s.Select(res.Rect, res.Additive)
		}
	case ModeTrace:
		if s.trace == nil || !s.trace.Active() {
			return nil
		}
		s.TracePoint(s.Viewport.ScreenToWorld(pos))
		_, _, err := s.FinishTrace()
		return err
	case ModeErase:
		if s.eraseBase != nil {
			base := s.eraseBase
			s.eraseBase = nil
			if base != s.store {
				s.history.Push(base)
			}
		}
	}
	return nil
}

// DragRect returns the rubber band of a selection drag in progress.
func (s *Session) DragRect() (geom.Rect, bool) {
	if !s.drag.Active() {
		return geom.Rect{}, false
	}
	return s.drag.Rect(s.Viewport), true
}

// HitAt returns the entity under a screen position.
func (s *Session) HitAt(pos f32.Point) (annotation.Entity, bool) {
	hit, ok := query.Nearest(s.store, s.Viewport.ScreenToWorld(pos), s.Tolerance(), s.Visibility)
	return hit.Entity, ok
}
