package edit

import (
	"gioui.org/f32"
	"gioui.org/io/key"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
)

// MultiSelect is the modifier set that makes a selection gesture additive.
var MultiSelect = key.ModShift | key.ModShortcut

// DragGesture tracks a pointer drag in screen space. The additive flag is
// captured when the button goes down; modifiers pressed later are ignored.
type DragGesture struct {
	start    f32.Point
	current  f32.Point
	active   bool
	additive bool
}

// DragResult is a finished drag in world coordinates.
type DragResult struct {
	Rect     geom.Rect
	Additive bool
}

// Press starts a drag.
func (g *DragGesture) Press(p f32.Point, mods key.Modifiers) {
	g.start, g.current = p, p
	g.active = true
	g.additive = mods&MultiSelect != 0
}

// Move updates the drag end point. It is ignored when no drag is active.
func (g *DragGesture) Move(p f32.Point) {
	if g.active {
		g.current = p
	}
}

// Active reports whether a drag is in progress.
func (g *DragGesture) Active() bool { return g.active }

// Rect returns the current drag rectangle in world coordinates.
func (g *DragGesture) Rect(vp geom.Viewport) geom.Rect {
	return geom.NewRect(vp.ScreenToWorld(g.start), vp.ScreenToWorld(g.current))
}

// Release ends the drag at p.
func (g *DragGesture) Release(p f32.Point, vp geom.Viewport) (DragResult, bool) {
	if !g.active {
		return DragResult{}, false
	}
	g.current = p
	res := DragResult{Rect: g.Rect(vp), Additive: g.additive}
	g.Cancel()
	return res, true
}

// Cancel abandons the drag.
func (g *DragGesture) Cancel() {
	*g = DragGesture{}
}
