// internal/style/simple.go - Simple style kinds
package style

import (
	"github.com/valpere/tile_render/internal/display"
	"github.com/valpere/tile_render/pkg/geometry"
)

// Style kind names, persisted in the "name" field
const (
	NameSimpleMarker       = "SimpleMarkerStyle"
	NameSimpleTextMarker   = "SimpleTextMarkerStyle"
	NameSimpleLine         = "SimpleLineStyle"
	NameSimpleTextLine     = "SimpleTextLineStyle"
	NameSimplePolygon      = "SimplePolygonStyle"
	NameSimpleTiledPolygon = "SimpleTiledPolygonStyle"
)

// LineType selects solid or dashed strokes
type LineType int

const (
	LineSolid LineType = iota
	LineDashed
)

// SimpleMarkerStyle draws point symbols
type SimpleMarkerStyle struct {
	Type     display.MarkerShape `json:"type"`
	Color    Color               `json:"color"`
	OutColor Color               `json:"out_color"`
	Size     float64             `json:"size"`
	Width    float64             `json:"width"`
}

// NewSimpleMarkerStyle creates a circle marker
func NewSimpleMarkerStyle(fill, outline Color, size float64) SimpleMarkerStyle {
	return SimpleMarkerStyle{Type: display.MarkerCircle, Color: fill, OutColor: outline, Size: size, Width: 1}
}

func (s SimpleMarkerStyle) Name() string { return NameSimpleMarker }

// WithSize returns a copy drawing markers of the given size
func (s SimpleMarkerStyle) WithSize(size float64) SimpleMarkerStyle {
	s.Size = size
	return s
}

// WithType returns a copy drawing the given marker shape
func (s SimpleMarkerStyle) WithType(shape display.MarkerShape) SimpleMarkerStyle {
	s.Type = shape
	return s
}

func (s SimpleMarkerStyle) marker() display.Marker {
	return display.Marker{
		Shape:        s.Type,
		Size:         s.Size,
		Fill:         s.Color,
		Outline:      s.OutColor,
		OutlineWidth: s.Width,
	}
}

// Draw implements Style. Only point geometries are drawn.
func (s SimpleMarkerStyle) Draw(g geometry.Geometry, surface display.Surface) error {
	return eachPoint(g, func(p *geometry.Point) error {
		return surface.DrawMarker(p.Coordinate, s.marker())
	})
}

// SimpleTextMarkerStyle draws a point symbol with a fixed label
type SimpleTextMarkerStyle struct {
	SimpleMarkerStyle
	Text      string  `json:"text"`
	TextSize  float64 `json:"text_size"`
	TextColor Color   `json:"text_color"`
}

func (s SimpleTextMarkerStyle) Name() string { return NameSimpleTextMarker }

// WithText returns a copy labelled with text
func (s SimpleTextMarkerStyle) WithText(text string) SimpleTextMarkerStyle {
	s.Text = text
	return s
}

// Draw implements Style
func (s SimpleTextMarkerStyle) Draw(g geometry.Geometry, surface display.Surface) error {
	label := display.Label{Color: s.TextColor, Size: s.TextSize}
	return eachPoint(g, func(p *geometry.Point) error {
		if err := surface.DrawMarker(p.Coordinate, s.marker()); err != nil {
			return err
		}
		return surface.DrawText(p.Coordinate, s.Text, label)
	})
}

// SimpleLineStyle strokes lines and polygon outlines
type SimpleLineStyle struct {
	Color Color    `json:"color"`
	Width float64  `json:"width"`
	Type  LineType `json:"type"`
}

// NewSimpleLineStyle creates a solid line style
func NewSimpleLineStyle(c Color, width float64) SimpleLineStyle {
	return SimpleLineStyle{Color: c, Width: width, Type: LineSolid}
}

func (s SimpleLineStyle) Name() string { return NameSimpleLine }

// WithWidth returns a copy stroking with the given width
func (s SimpleLineStyle) WithWidth(width float64) SimpleLineStyle {
	s.Width = width
	return s
}

func (s SimpleLineStyle) stroke() display.Stroke {
	st := display.Stroke{Color: s.Color, Width: s.Width}
	if s.Type == LineDashed {
		dash := s.Width * 3
		if dash < 3 {
			dash = 3
		}
		st.Dash = []float64{dash, dash}
	}
	return st
}

// Draw implements Style. Point geometries are ignored.
func (s SimpleLineStyle) Draw(g geometry.Geometry, surface display.Surface) error {
	return eachPath(g, func(coords []geometry.Coordinate, closed bool) error {
		return surface.StrokeLine(coords, closed, s.stroke())
	})
}

// SimpleTextLineStyle strokes lines and labels them at their middle vertex
type SimpleTextLineStyle struct {
	SimpleLineStyle
	Text      string  `json:"text"`
	TextSize  float64 `json:"text_size"`
	TextColor Color   `json:"text_color"`
}

func (s SimpleTextLineStyle) Name() string { return NameSimpleTextLine }

// WithText returns a copy labelled with text
func (s SimpleTextLineStyle) WithText(text string) SimpleTextLineStyle {
	s.Text = text
	return s
}

// Draw implements Style
func (s SimpleTextLineStyle) Draw(g geometry.Geometry, surface display.Surface) error {
	label := display.Label{Color: s.TextColor, Size: s.TextSize}
	return eachPath(g, func(coords []geometry.Coordinate, closed bool) error {
		if err := surface.StrokeLine(coords, closed, s.stroke()); err != nil {
			return err
		}
		if len(coords) == 0 {
			return nil
		}
		return surface.DrawText(coords[len(coords)/2], s.Text, label)
	})
}

// SimplePolygonStyle fills polygons and strokes their outline
type SimplePolygonStyle struct {
	Color    Color   `json:"color"`
	OutColor Color   `json:"out_color"`
	Width    float64 `json:"width"`
	Fill     bool    `json:"fill"`
}

// NewSimplePolygonStyle creates a filled polygon style with an outline
func NewSimplePolygonStyle(fill, outline Color, width float64) SimplePolygonStyle {
	return SimplePolygonStyle{Color: fill, OutColor: outline, Width: width, Fill: true}
}

func (s SimplePolygonStyle) Name() string { return NameSimplePolygon }

// WithFill returns a copy with filling switched on or off
func (s SimplePolygonStyle) WithFill(fill bool) SimplePolygonStyle {
	s.Fill = fill
	return s
}

// Draw implements Style. Only polygon geometries are drawn.
func (s SimplePolygonStyle) Draw(g geometry.Geometry, surface display.Surface) error {
	return s.draw(g, surface, s.Width > 0)
}

func (s SimplePolygonStyle) draw(g geometry.Geometry, surface display.Surface, outline bool) error {
	stroke := display.Stroke{Color: s.OutColor, Width: s.Width}
	return eachPolygon(g, func(p *geometry.Polygon) error {
		if s.Fill {
			if err := surface.FillPolygon(p.Rings, s.Color); err != nil {
				return err
			}
		}
		if !outline {
			return nil
		}
		for _, ring := range p.Rings {
			if err := surface.StrokeLine(ring, true, stroke); err != nil {
				return err
			}
		}
		return nil
	})
}

// SimpleTiledPolygonStyle fills polygons clipped to tile edges. Outlines
// are not drawn since they would trace the tile seams.
type SimpleTiledPolygonStyle struct {
	SimplePolygonStyle
}

func (s SimpleTiledPolygonStyle) Name() string { return NameSimpleTiledPolygon }

// Draw implements Style
func (s SimpleTiledPolygonStyle) Draw(g geometry.Geometry, surface display.Surface) error {
	return s.draw(g, surface, false)
}

func eachPoint(g geometry.Geometry, fn func(*geometry.Point) error) error {
	switch v := g.(type) {
	case *geometry.Point:
		return fn(v)
	case *geometry.MultiPoint, *geometry.GeometryCollection:
		for _, member := range geometry.Members(v) {
			if err := eachPoint(member, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func eachPath(g geometry.Geometry, fn func([]geometry.Coordinate, bool) error) error {
	switch v := g.(type) {
	case *geometry.LineString:
		return fn(v.Coords, false)
	case *geometry.Polygon:
		for _, ring := range v.Rings {
			if err := fn(ring, true); err != nil {
				return err
			}
		}
	case *geometry.MultiLineString, *geometry.MultiPolygon, *geometry.GeometryCollection:
		for _, member := range geometry.Members(v) {
			if err := eachPath(member, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func eachPolygon(g geometry.Geometry, fn func(*geometry.Polygon) error) error {
	switch v := g.(type) {
	case *geometry.Polygon:
		return fn(v)
	case *geometry.MultiPolygon, *geometry.GeometryCollection:
		for _, member := range geometry.Members(v) {
			if err := eachPolygon(member, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
