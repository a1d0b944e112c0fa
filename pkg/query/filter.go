// Package query answers geometric questions about an annotation.Store:
// which connection point a pointer should snap to, which entity lies under
// a click, and which entities a drag rectangle or eraser square touches.
//
// All functions are read-only and work in world coordinates. Snapping uses
// a fixed world radius so that it behaves the same at every zoom level; hit
// testing takes a tolerance from geom.HitTolerance so pick targets follow
// the zoom.
package query

import "github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"

// Filter decides which entities take part in a query.
type Filter interface {
	Accept(e annotation.Entity) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(e annotation.Entity) bool

func (f FilterFunc) Accept(e annotation.Entity) bool { return f(e) }

// All accepts every entity.
var All Filter = FilterFunc(func(annotation.Entity) bool { return true })

// Visibility hides entities by layer and by kind. Vias belong to both layers
// and are only hidden by kind.
type Visibility struct {
	HideTop    bool
	HideBottom bool
	Hidden     map[annotation.Kind]bool
}

// Accept implements Filter.
func (v Visibility) Accept(e annotation.Entity) bool {
	if v.Hidden[e.EntityRef().Kind] {
		return false
	}
	layer, ok := e.EntityLayer()
	if !ok {
		return true
	}
	switch layer {
	case annotation.LayerTop:
		return !v.HideTop
	case annotation.LayerBottom:
		return !v.HideBottom
	}
	return true
}

// KindFilter accepts only the listed kinds.
func KindFilter(kinds ...annotation.Kind) Filter {
	set := make(map[annotation.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return FilterFunc(func(e annotation.Entity) bool {
		return set[e.EntityRef().Kind]
	})
}

// And accepts entities accepted by every filter. Nil filters are skipped.
func And(filters ...Filter) Filter {
	return FilterFunc(func(e annotation.Entity) bool {
		for _, f := range filters {
			if f != nil && !f.Accept(e) {
				return false
			}
		}
		return true
	})
}
