package edit

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
)

// DeleteSelection removes every selected entity whose kind is unlocked.
// Locked refs stay in the returned selection, and the skipped kinds are
// reported as a *LockViolationError.
func DeleteSelection(st *annotation.Store, sel Selection, locks Locks) (*annotation.Store, Selection, error) {
	hit := skipped{}
	var (
		drop []annotation.Ref
		kept Selection
	)
	for _, ref := range sel.Refs() {
		if locks.Locked(ref.Kind) {
			hit[ref.Kind] = true
			kept.Add(ref)
			continue
		}
		drop = append(drop, ref)
	}
	return st.RemoveMany(drop), kept, hit.err("delete")
}

// MoveSelection translates every unlocked selected entity by d.
func MoveSelection(st *annotation.Store, sel Selection, d geom.Point, locks Locks) (*annotation.Store, error) {
	return apply(st, sel, locks, "move", func(e annotation.Entity) annotation.Entity {
		return annotation.Translate(e, d)
	})
}

// ResizeSelection sets the size of every unlocked selected entity.
func ResizeSelection(st *annotation.Store, sel Selection, size float64, locks Locks) (*annotation.Store, error) {
	if size <= 0 {
		return st, fmt.Errorf("edit: resize to %v: %w", size, annotation.ErrInvalidGeometry)
	}
	return apply(st, sel, locks, "resize", func(e annotation.Entity) annotation.Entity {
		return annotation.Resize(e, size)
	})
}

// RecolorSelection sets the color of every unlocked selected entity.
func RecolorSelection(st *annotation.Store, sel Selection, color string, locks Locks) (*annotation.Store, error) {
	return apply(st, sel, locks, "recolor", func(e annotation.Entity) annotation.Entity {
		return annotation.Recolor(e, color)
	})
}

// apply maps fn over the unlocked selected entities. Refs that no longer
// resolve are ignored. A store error aborts the batch and returns the
// original snapshot.
func apply(st *annotation.Store, sel Selection, locks Locks, op string, fn func(annotation.Entity) annotation.Entity) (*annotation.Store, error) {
	hit := skipped{}
	next := st
	for _, ref := range sel.Refs() {
		if locks.Locked(ref.Kind) {
			hit[ref.Kind] = true
			continue
		}
		e, ok := next.Lookup(ref)
		if !ok {
			continue
		}
		var err error
		next, err = next.Update(fn(e))
		if err != nil {
			return st, fmt.Errorf("edit: %s %s: %w", op, ref, err)
		}
	}
	return next, hit.err(op)
}
