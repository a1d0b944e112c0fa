package edit

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

// EraseResult is the outcome of one eraser sample.
type EraseResult struct {
	Store   *annotation.Store
	Removed []annotation.Ref

	// Locked lists the locked kinds the eraser touched and kept.
	Locked []annotation.Kind
}

// Err returns a *LockViolationError when locked entities were hit.
func (r EraseResult) Err() error {
	if len(r.Locked) == 0 {
		return nil
	}
	return &LockViolationError{Op: "erase", Kinds: r.Locked}
}

func erasable(k annotation.Kind) bool {
	return k != annotation.KindComponent
}

// Erase applies one eraser sample: a square of side brush centered on
// center. Strokes, power and ground nodes intersecting the square are
// removed unless their kind is locked. Components are never erased.
// Applying the same sample twice leaves the store unchanged.
func Erase(st *annotation.Store, center geom.Point, brush float64, locks Locks, f query.Filter) EraseResult {
	square := geom.Square(center, brush)
	hit := skipped{}
	var removed []annotation.Ref

	for _, e := range query.InRect(st, square, f) {
		ref := e.EntityRef()
		if !erasable(ref.Kind) {
			continue
		}
		if locks.Locked(ref.Kind) {
			hit[ref.Kind] = true
			continue
		}
		removed = append(removed, ref)
	}

	return EraseResult{
		Store:   st.RemoveMany(removed),
		Removed: removed,
		Locked:  hit.kinds(),
	}
}

// EraseStroke folds Erase over a sequence of samples.
func EraseStroke(st *annotation.Store, samples []geom.Point, brush float64, locks Locks, f query.Filter) EraseResult {
	out := EraseResult{Store: st}
	hit := skipped{}
	for _, p := range samples {
		r := Erase(out.Store, p, brush, locks, f)
		out.Store = r.Store
		out.Removed = append(out.Removed, r.Removed...)
		for _, k := range r.Locked {
			hit[k] = true
		}
	}
	out.Locked = hit.kinds()
	return out
}
