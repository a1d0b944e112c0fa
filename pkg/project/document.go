// Package project reads and writes the JSON project document.
//
// A document holds the drawing (strokes, components, power and ground
// nodes), the power bus table and the Node ID counter. Loading is tolerant:
// entities that cannot enter a store are dropped and reported as
// Diagnostics instead of failing the whole load.
package project

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Version is the document format written by Encode.
const Version = 1

// ErrUnsupportedVersion is returned for documents newer than Version.
var ErrUnsupportedVersion = errors.New("project: unsupported document version")

// Stroke type values.
const (
	StrokeVia   = "via"
	StrokePad   = "pad"
	StrokeTrace = "trace"
)

// Document is the on-disk project format.
type Document struct {
	Version        int       `json:"version"`
	Drawing        Drawing   `json:"drawing"`
	PowerBuses     []BusJSON `json:"powerBuses"`
	PointIDCounter nodeid.ID `json:"pointIdCounter"`
}

// Drawing holds every annotation.
type Drawing struct {
	DrawingStrokes   []StrokeJSON    `json:"drawingStrokes"`
	ComponentsTop    []ComponentJSON `json:"componentsTop"`
	ComponentsBottom []ComponentJSON `json:"componentsBottom"`
	Powers           []PowerJSON     `json:"powers"`
	Grounds          []GroundJSON    `json:"grounds"`
}

// PointJSON is a point; ID is omitted on points without connectivity.
type PointJSON struct {
	ID nodeid.ID `json:"id,omitempty"`
	X  float64   `json:"x"`
	Y  float64   `json:"y"`
}

// StrokeJSON is a via, pad or trace. Vias and pads use the first point.
type StrokeJSON struct {
	ID      string      `json:"id"`
	Points  []PointJSON `json:"points"`
	Color   string      `json:"color"`
	Size    float64     `json:"size"`
	Layer   string      `json:"layer,omitempty"`
	Type    string      `json:"type"`
	ViaType string      `json:"viaType,omitempty"`
	PadType string      `json:"padType,omitempty"`
}

// ComponentJSON is a placed component.
type ComponentJSON struct {
	ID             string   `json:"id"`
	Designator     string   `json:"designator"`
	PackageType    string   `json:"packageType"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	Width          float64  `json:"width"`
	Height         float64  `json:"height"`
	Layer          string   `json:"layer"`
	PinCount       int      `json:"pinCount"`
	PinConnections []string `json:"pinConnections"`
}

// PowerJSON is a power node.
type PowerJSON struct {
	ID         string    `json:"id"`
	PointID    nodeid.ID `json:"pointId"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Size       float64   `json:"size"`
	Color      string    `json:"color"`
	PowerBusID string    `json:"powerBusId"`
	Layer      string    `json:"layer,omitempty"`
	Type       string    `json:"type"`
}

// GroundJSON is a ground node. Type holds its label.
type GroundJSON struct {
	ID      string    `json:"id"`
	PointID nodeid.ID `json:"pointId"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Size    float64   `json:"size"`
	Color   string    `json:"color"`
	Layer   string    `json:"layer,omitempty"`
	Type    string    `json:"type"`
}

// BusJSON is a power bus.
type BusJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Voltage string `json:"voltage"`
	Color   string `json:"color"`
}

// Decode parses a document. A missing version is read as Version.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("project: decode: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = Version
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("project: version %d: %w", doc.Version, ErrUnsupportedVersion)
	}
	return &doc, nil
}

// Encode writes a document as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("project: encode: %w", err)
	}
	return data, nil
}
