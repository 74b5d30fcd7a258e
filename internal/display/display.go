// internal/display/display.go - Display and drawing surface interfaces
package display

import (
	"image/color"

	"github.com/valpere/tile_render/pkg/geometry"
)

// MarkerShape selects the symbol drawn for point features
type MarkerShape int

const (
	MarkerCircle MarkerShape = iota
	MarkerSquare
	MarkerCross
	MarkerTriangle
)

// Stroke describes how lines are drawn
type Stroke struct {
	Color color.Color
	Width float64 // pixels
	Dash  []float64
}

// Marker describes a point symbol
type Marker struct {
	Shape        MarkerShape
	Size         float64 // pixels
	Fill         color.Color
	Outline      color.Color // nil draws no outline
	OutlineWidth float64
}

// Label describes text drawn next to a feature
type Label struct {
	Color color.Color
	Size  float64 // points
}

// Surface receives drawing operations in map coordinates.
// Implementations must accept calls from several goroutines at once.
type Surface interface {
	FillPolygon(rings [][]geometry.Coordinate, fill color.Color) error
	StrokeLine(coords []geometry.Coordinate, closed bool, stroke Stroke) error
	DrawMarker(at geometry.Coordinate, marker Marker) error
	DrawText(at geometry.Coordinate, text string, label Label) error
}

// Display is a surface showing a map extent at a zoom level
type Display interface {
	Surface
	ZoomLevel() float64
	Bounds() geometry.Envelope
}
