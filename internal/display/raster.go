// internal/display/raster.go - Raster display backed by gg
package display

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"

	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

// tilePixels is the edge length of one tile at the zoom level a raster reports
const tilePixels = 256

// Raster draws onto an in-memory image covering a map extent.
// Drawing calls are serialised.
type Raster struct {
	mu     sync.Mutex
	dc     *gg.Context
	bounds geometry.Envelope
	zoom   float64
	scaleX float64
	scaleY float64

	fontPath string
	fontSize float64
}

// RasterOption configures a raster
type RasterOption func(*rasterOptions)

type rasterOptions struct {
	background color.Color
	fontPath   string
	fontSize   float64
	zoom       float64
}

// WithBackground fills the raster with c before drawing
func WithBackground(c color.Color) RasterOption {
	return func(o *rasterOptions) { o.background = c }
}

// WithFontFace loads a TrueType font used for labels
func WithFontFace(path string, size float64) RasterOption {
	return func(o *rasterOptions) {
		o.fontPath = path
		o.fontSize = size
	}
}

// WithZoom overrides the zoom level derived from the raster resolution
func WithZoom(zoom float64) RasterOption {
	return func(o *rasterOptions) { o.zoom = zoom }
}

// NewRaster creates a width x height raster showing bounds, given in Web
// Mercator metres.
func NewRaster(width, height int, bounds geometry.Envelope, opts ...RasterOption) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	if !bounds.IsInit() || bounds.Width() == 0 || bounds.Height() == 0 {
		return nil, fmt.Errorf("invalid raster bounds %s", bounds)
	}

	options := rasterOptions{zoom: -1}
	for _, opt := range opts {
		opt(&options)
	}

	r := &Raster{
		dc:     gg.NewContext(width, height),
		bounds: bounds,
		scaleX: float64(width) / bounds.Width(),
		scaleY: float64(height) / bounds.Height(),
	}

	r.zoom = options.zoom
	if r.zoom < 0 {
		// world width in pixels is tilePixels * 2^zoom
		r.zoom = math.Log2(r.scaleX * 2 * tile.WebMercatorMax / tilePixels)
	}

	if options.background != nil {
		r.dc.ClearWithColor(gg.FromColor(options.background))
	}
	if options.fontPath != "" {
		if err := r.dc.LoadFontFace(options.fontPath, options.fontSize); err != nil {
			return nil, fmt.Errorf("failed to load font %s: %w", options.fontPath, err)
		}
		r.fontPath = options.fontPath
		r.fontSize = options.fontSize
	}
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)

	return r, nil
}

// ZoomLevel implements Display
func (r *Raster) ZoomLevel() float64 {
	return r.zoom
}

// Bounds implements Display
func (r *Raster) Bounds() geometry.Envelope {
	return r.bounds
}

// Size returns the raster dimensions in pixels
func (r *Raster) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

// ToPixel converts map coordinates into raster pixels
func (r *Raster) ToPixel(c geometry.Coordinate) (float64, float64) {
	return (c.X - r.bounds.MinX) * r.scaleX, (r.bounds.MaxY - c.Y) * r.scaleY
}

// FillPolygon implements Surface. Holes are cut with the even-odd rule.
func (r *Raster) FillPolygon(rings [][]geometry.Coordinate, fill color.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dc.ClearPath()
	for _, ring := range rings {
		r.tracePath(ring, true)
	}
	r.dc.SetFillRule(gg.FillRuleEvenOdd)
	r.dc.SetColor(fill)
	return r.dc.Fill()
}

// StrokeLine implements Surface
func (r *Raster) StrokeLine(coords []geometry.Coordinate, closed bool, stroke Stroke) error {
	if len(coords) < 2 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.dc.ClearPath()
	r.tracePath(coords, closed)
	r.dc.SetColor(stroke.Color)
	r.dc.SetLineWidth(stroke.Width)
	if len(stroke.Dash) > 0 {
		r.dc.SetDash(stroke.Dash...)
		defer r.dc.ClearDash()
	}
	return r.dc.Stroke()
}

// DrawMarker implements Surface
func (r *Raster) DrawMarker(at geometry.Coordinate, marker Marker) error {
	x, y := r.ToPixel(at)
	half := marker.Size / 2

	r.mu.Lock()
	defer r.mu.Unlock()

	r.dc.ClearPath()
	switch marker.Shape {
	case MarkerSquare:
		r.dc.DrawRectangle(x-half, y-half, marker.Size, marker.Size)
	case MarkerCross:
		r.dc.MoveTo(x-half, y)
		r.dc.LineTo(x+half, y)
		r.dc.MoveTo(x, y-half)
		r.dc.LineTo(x, y+half)
		r.dc.SetColor(marker.Fill)
		r.dc.SetLineWidth(math.Max(marker.OutlineWidth, 1))
		return r.dc.Stroke()
	case MarkerTriangle:
		r.dc.MoveTo(x, y-half)
		r.dc.LineTo(x+half, y+half)
		r.dc.LineTo(x-half, y+half)
		r.dc.ClosePath()
	default:
		r.dc.DrawCircle(x, y, half)
	}

	r.dc.SetFillRule(gg.FillRuleNonZero)
	r.dc.SetColor(marker.Fill)
	if marker.Outline == nil || marker.OutlineWidth <= 0 {
		return r.dc.Fill()
	}
	if err := r.dc.FillPreserve(); err != nil {
		return err
	}
	r.dc.SetColor(marker.Outline)
	r.dc.SetLineWidth(marker.OutlineWidth)
	return r.dc.Stroke()
}

// DrawText implements Surface. Without a font face text is skipped.
func (r *Raster) DrawText(at geometry.Coordinate, text string, label Label) error {
	if text == "" || r.fontPath == "" {
		return nil
	}
	x, y := r.ToPixel(at)

	r.mu.Lock()
	defer r.mu.Unlock()

	if label.Size > 0 && label.Size != r.fontSize {
		if err := r.dc.LoadFontFace(r.fontPath, label.Size); err != nil {
			return fmt.Errorf("failed to load font size %g: %w", label.Size, err)
		}
		r.fontSize = label.Size
	}
	r.dc.SetColor(label.Color)
	r.dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
	return nil
}

// Image returns the drawn image
func (r *Raster) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.Image()
}

// EncodePNG writes the raster as PNG
func (r *Raster) EncodePNG(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.EncodePNG(w)
}

// Close releases the drawing context
func (r *Raster) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.Close()
}

func (r *Raster) tracePath(coords []geometry.Coordinate, closed bool) {
	for i, c := range coords {
		x, y := r.ToPixel(c)
		if i == 0 {
			r.dc.NewSubPath()
			r.dc.MoveTo(x, y)
			continue
		}
		r.dc.LineTo(x, y)
	}
	if closed && len(coords) > 2 {
		r.dc.ClosePath()
	}
}
