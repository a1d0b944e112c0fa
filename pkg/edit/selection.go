// Package edit composes geometric queries with per-kind lock flags into the
// editing operations of the tracer: click and rectangle selection, the
// square eraser, batch delete/move/resize/recolor and trace capture.
//
// Every operation takes a store snapshot and returns a new one; nothing here
// keeps global state.
package edit

import (
	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

// DefaultTinyDrag is the size below which a drag counts as a click.
const DefaultTinyDrag = 3.0

// Group is one of the independent partitions of a Selection.
type Group int

const (
	GroupStrokes Group = iota // vias, pads and traces
	GroupComponents
	GroupPowers
	GroupGrounds
)

// GroupOf returns the selection group holding entities of kind k.
func GroupOf(k annotation.Kind) Group {
	switch k {
	case annotation.KindComponent:
		return GroupComponents
	case annotation.KindPower:
		return GroupPowers
	case annotation.KindGround:
		return GroupGrounds
	default:
		return GroupStrokes
	}
}

// Selection is a set of entity refs partitioned by group. The zero value is
// an empty selection. Refs keep insertion order within a group.
type Selection struct {
	Strokes    []annotation.Ref
	Components []annotation.Ref
	Powers     []annotation.Ref
	Grounds    []annotation.Ref
}

func (s *Selection) group(g Group) *[]annotation.Ref {
	switch g {
	case GroupComponents:
		return &s.Components
	case GroupPowers:
		return &s.Powers
	case GroupGrounds:
		return &s.Grounds
	default:
		return &s.Strokes
	}
}

// Add inserts ref unless it is already selected.
func (s *Selection) Add(ref annotation.Ref) bool {
	if s.Contains(ref) {
		return false
	}
	g := s.group(GroupOf(ref.Kind))
	*g = append(*g, ref)
	return true
}

// Contains reports whether ref is selected.
func (s Selection) Contains(ref annotation.Ref) bool {
	for _, r := range *s.group(GroupOf(ref.Kind)) {
		if r == ref {
			return true
		}
	}
	return false
}

// Len returns the number of selected refs.
func (s Selection) Len() int {
	return len(s.Strokes) + len(s.Components) + len(s.Powers) + len(s.Grounds)
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return s.Len() == 0 }

// Refs returns all refs, strokes first.
func (s Selection) Refs() []annotation.Ref {
	out := make([]annotation.Ref, 0, s.Len())
	out = append(out, s.Strokes...)
	out = append(out, s.Components...)
	out = append(out, s.Powers...)
	out = append(out, s.Grounds...)
	return out
}

// Union returns the refs of s followed by those of o not already in s.
func (s Selection) Union(o Selection) Selection {
	var out Selection
	for _, r := range s.Refs() {
		out.Add(r)
	}
	for _, r := range o.Refs() {
		out.Add(r)
	}
	return out
}

// Prune drops refs that no longer resolve in st.
func (s Selection) Prune(st *annotation.Store) Selection {
	var out Selection
	for _, r := range s.Refs() {
		if _, ok := st.Lookup(r); ok {
			out.Add(r)
		}
	}
	return out
}

// SelectOptions configures Select.
type SelectOptions struct {
	// Tolerance is the hit tolerance for click selection, in world units.
	Tolerance float64

	// TinyDrag is the click threshold. Zero means DefaultTinyDrag.
	TinyDrag float64

	// Additive merges the result into the current selection instead of
	// replacing it.
	Additive bool

	Filter query.Filter
}

// Select runs click or rectangle selection for a finished drag. A drag
// narrower than TinyDrag on both axes picks the nearest entity under its
// center; a larger one catches every entity intersecting it.
func Select(st *annotation.Store, current Selection, drag geom.Rect, opts SelectOptions) Selection {
	tiny := opts.TinyDrag
	if tiny <= 0 {
		tiny = DefaultTinyDrag
	}

	var picked Selection
	if drag.Width() < tiny && drag.Height() < tiny {
		if hit, ok := query.Nearest(st, drag.Center(), opts.Tolerance, opts.Filter); ok {
			picked.Add(hit.Ref)
		}
	} else {
		for _, e := range query.InRect(st, drag, opts.Filter) {
			picked.Add(e.EntityRef())
		}
	}

	if opts.Additive {
		return current.Union(picked)
	}
	return picked
}
