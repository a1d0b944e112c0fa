// Package session ties the engine together for one open board: the current
// store snapshot, the Node ID allocator, the viewport, edit locks, the active
// tool and undo history.
package session

import (
	"fmt"
	"regexp"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/edit"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/geom"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/query"
)

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config controls tool behavior and the defaults for new entities.
type Config struct {
	// Viewport and picking
	ContentBorder      float64 // screen pixels around the image (default: 0)
	SnapRadius         float64 // world units (default: 15)
	TinyDrag           float64 // drags smaller than this are clicks (default: 3)
	HitTolerancePixels float64 // pick tolerance in screen pixels (default: 6)
	MinHitTolerance    float64 // lower bound in world units (default: 4)
	SnapSameLayer      bool    // pads, power and ground snap only on the active layer (default: false)

	// New entity defaults
	ViaSize    float64
	PadSize    float64
	TraceSize  float64
	SymbolSize float64 // power and ground symbols
	ViaColor   string
	PadColor   string
	TraceColor string
	PowerColor string
	GndColor   string

	BrushSize    float64 // eraser square side (default: 20)
	HistoryLimit int     // undo depth (default: 100)
}

// DefaultConfig returns a Config with the stock tool settings.
func DefaultConfig() *Config {
	return &Config{
		ContentBorder:      0,
		SnapRadius:         query.DefaultSnapRadius,
		TinyDrag:           edit.DefaultTinyDrag,
		HitTolerancePixels: geom.HitTolerancePixels,
		MinHitTolerance:    geom.MinHitTolerance,
		SnapSameLayer:      false,
		ViaSize:            10,
		PadSize:            8,
		TraceSize:          2,
		SymbolSize:         12,
		ViaColor:           "#0066ff",
		PadColor:           "#ff9900",
		TraceColor:         "#00cc66",
		PowerColor:         "#ff0000",
		GndColor:           "#333333",
		BrushSize:          20,
		HistoryLimit:       100,
	}
}

// Validate repairs out-of-range numbers and rejects malformed colors.
func (c *Config) Validate() error {
	def := DefaultConfig()
	fix := func(v *float64, d float64) {
		if !(*v > 0) {
			*v = d
		}
	}
	fix(&c.SnapRadius, def.SnapRadius)
	fix(&c.TinyDrag, def.TinyDrag)
	fix(&c.HitTolerancePixels, def.HitTolerancePixels)
	fix(&c.MinHitTolerance, def.MinHitTolerance)
	fix(&c.ViaSize, def.ViaSize)
	fix(&c.PadSize, def.PadSize)
	fix(&c.TraceSize, def.TraceSize)
	fix(&c.SymbolSize, def.SymbolSize)
	fix(&c.BrushSize, def.BrushSize)
	if c.ContentBorder < 0 {
		c.ContentBorder = 0
	}
	if c.HistoryLimit < 1 {
		c.HistoryLimit = def.HistoryLimit
	}

	for name, v := range map[string]string{
		"via":    c.ViaColor,
		"pad":    c.PadColor,
		"trace":  c.TraceColor,
		"power":  c.PowerColor,
		"ground": c.GndColor,
	} {
		if !colorPattern.MatchString(v) {
			return fmt.Errorf("session: %s color %q is not #rgb or #rrggbb", name, v)
		}
	}
	return nil
}

// HitTolerance returns the pick tolerance in world units at scale.
func (c *Config) HitTolerance(scale float64) float64 {
	t := c.HitTolerancePixels / geom.ClampScale(scale)
	if t < c.MinHitTolerance {
		return c.MinHitTolerance
	}
	return t
}

// defaultColor returns the configured color for new entities of kind k.
func (c *Config) defaultColor(k annotation.Kind) string {
	switch k {
	case annotation.KindVia:
		return c.ViaColor
	case annotation.KindPad:
		return c.PadColor
	case annotation.KindTrace:
		return c.TraceColor
	case annotation.KindPower:
		return c.PowerColor
	case annotation.KindGround:
		return c.GndColor
	}
	return ""
}
