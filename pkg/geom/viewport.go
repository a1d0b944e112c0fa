package geom

import (
	"math"

	"gioui.org/f32"
)

// Zoom limits for Viewport.Scale.
const (
	MinScale = 0.25
	MaxScale = 8.0
)

// Hit tolerance: HitTolerancePixels screen pixels, never less than
// MinHitTolerance world units.
const (
	HitTolerancePixels = 6.0
	MinHitTolerance    = 4.0
)

// Viewport maps between device (screen) coordinates and world coordinates.
//
// Screen to world: divide by the device pixel ratio, subtract the content
// border, subtract the pan offset, divide by the scale.
type Viewport struct {
	// Pan offset in CSS pixels
	Pan Point

	// Zoom factor, screen pixels per world unit. Clamped to [MinScale, MaxScale].
	Scale float64

	// Fixed margin around the drawing area in CSS pixels
	ContentBorder float64

	// Device pixels per CSS pixel. Zero means 1.
	DevicePixelRatio float64
}

// NewViewport returns an identity viewport with the given content border.
func NewViewport(border float64) Viewport {
	return Viewport{
		Scale:            1,
		ContentBorder:    border,
		DevicePixelRatio: 1,
	}
}

// ClampScale limits s to [MinScale, MaxScale]. Non-positive or NaN input
// yields 1.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

func (v Viewport) ratio() float64 {
	if v.DevicePixelRatio <= 0 {
		return 1
	}
	return v.DevicePixelRatio
}

// ScreenToWorld converts a device pixel position to world coordinates.
// The result is not quantized; creation sites call Quantize.
func (v Viewport) ScreenToWorld(p f32.Point) Point {
	scale := ClampScale(v.Scale)
	dpr := v.ratio()

	x := float64(p.X) / dpr
	y := float64(p.Y) / dpr

	x -= v.ContentBorder
	y -= v.ContentBorder

	x -= v.Pan.X
	y -= v.Pan.Y

	return Point{X: x / scale, Y: y / scale}
}

// WorldToScreen converts world coordinates to a device pixel position.
func (v Viewport) WorldToScreen(p Point) f32.Point {
	scale := ClampScale(v.Scale)
	dpr := v.ratio()

	x := (p.X*scale + v.Pan.X + v.ContentBorder) * dpr
	y := (p.Y*scale + v.Pan.Y + v.ContentBorder) * dpr

	return f32.Point{X: float32(x), Y: float32(y)}
}

// PanBy moves the view by a device pixel delta.
func (v *Viewport) PanBy(dx, dy float64) {
	dpr := v.ratio()
	v.Pan.X += dx / dpr
	v.Pan.Y += dy / dpr
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// the given screen position stationary.
func (v *Viewport) ZoomAt(screen f32.Point, factor float64) {
	before := v.ScreenToWorld(screen)

	v.Scale = ClampScale(ClampScale(v.Scale) * factor)

	// Solve pan so that before maps back onto the same screen position
	dpr := v.ratio()
	v.Pan.X = float64(screen.X)/dpr - v.ContentBorder - before.X*v.Scale
	v.Pan.Y = float64(screen.Y)/dpr - v.ContentBorder - before.Y*v.Scale
}

// HitTolerance returns the pick tolerance in world units for this zoom level.
func (v Viewport) HitTolerance() float64 {
	return HitTolerance(v.Scale)
}

// HitTolerance returns max(HitTolerancePixels/scale, MinHitTolerance): pick
// targets shrink as the user zooms in but never below MinHitTolerance.
func HitTolerance(scale float64) float64 {
	return math.Max(HitTolerancePixels/ClampScale(scale), MinHitTolerance)
}

// VisibleBounds returns the world rectangle covered by a screen of the given
// device pixel size.
func (v Viewport) VisibleBounds(width, height float32) Rect {
	return NewRect(
		v.ScreenToWorld(f32.Point{}),
		v.ScreenToWorld(f32.Point{X: width, Y: height}),
	)
}
