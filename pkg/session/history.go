package session

import "github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"

// History keeps undo and redo stacks of store snapshots. Snapshots are
// immutable, so no copying is needed.
type History struct {
	limit int
	undo  []*annotation.Store
	redo  []*annotation.Store
}

// NewHistory returns a history holding at most limit undo steps.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push records prev as the state before a new change and clears redo.
func (h *History) Push(prev *annotation.Store) {
	h.undo = append(h.undo, prev)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// Undo returns the snapshot to restore, given the current one.
func (h *History) Undo(cur *annotation.Store) (*annotation.Store, bool) {
	if len(h.undo) == 0 {
		return cur, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cur)
	return prev, true
}

// Redo reapplies the last undone snapshot.
func (h *History) Redo(cur *annotation.Store) (*annotation.Store, bool) {
	if len(h.redo) == 0 {
		return cur, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cur)
	return next, true
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo, h.redo = nil, nil
}
