// internal/output/formatter.go - Output formatting implementation
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

type featureDoc struct {
	ID       int64           `json:"id"`
	Layer    string          `json:"layer,omitempty"`
	Geometry json.RawMessage `json:"geometry"`
}

type tileDoc struct {
	Tile     string         `json:"tile"`
	Features []featureDoc   `json:"features"`
	Metadata map[string]any `json:"_metadata,omitempty"`
}

// JSONFormatter formats tiles as JSON documents with geometry objects
type JSONFormatter struct {
	pretty       bool
	includeStats bool
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(pretty, includeStats bool) *JSONFormatter {
	return &JSONFormatter{
		pretty:       pretty,
		includeStats: includeStats,
	}
}

func (f *JSONFormatter) document(vt *tile.VectorTile) (*tileDoc, error) {
	doc := &tileDoc{Tile: vt.Item.String(), Features: make([]featureDoc, 0, vt.Size())}
	for _, feature := range vt.Features {
		raw, err := geometry.Marshal(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", feature.ID, err)
		}
		doc.Features = append(doc.Features, featureDoc{ID: feature.ID, Layer: feature.Layer, Geometry: raw})
	}

	// Add metadata if requested
	if f.includeStats {
		doc.Metadata = map[string]any{
			"feature_count": vt.Size(),
			"envelope":      vt.Item.Envelope(),
			"scheme":        vt.Item.Scheme.String(),
		}
	}
	return doc, nil
}

func (f *JSONFormatter) marshal(v any) ([]byte, error) {
	if f.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// Format formats a single tile
func (f *JSONFormatter) Format(vt *tile.VectorTile) ([]byte, error) {
	if vt == nil {
		return nil, fmt.Errorf("cannot format empty tile")
	}
	doc, err := f.document(vt)
	if err != nil {
		return nil, err
	}
	return f.marshal(doc)
}

// FormatBatch formats multiple tiles as one document
func (f *JSONFormatter) FormatBatch(tiles []*tile.VectorTile) ([]byte, error) {
	docs := make([]*tileDoc, 0, len(tiles))
	total := 0
	for _, vt := range tiles {
		if vt == nil {
			continue
		}
		doc, err := f.document(vt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		total += vt.Size()
	}

	result := map[string]any{"tiles": docs}
	if f.includeStats {
		result["summary"] = map[string]any{
			"total_tiles":    len(docs),
			"total_features": total,
			"generated_at":   time.Now().UTC(),
		}
	}
	return f.marshal(result)
}

// ContentType returns the MIME type for JSON
func (f *JSONFormatter) ContentType() string {
	return "application/json"
}

// WKTFormatter writes one line per feature: id, layer and WKT separated by tabs
type WKTFormatter struct{}

// NewWKTFormatter creates a new WKT formatter
func NewWKTFormatter() *WKTFormatter {
	return &WKTFormatter{}
}

// Format formats a single tile
func (f *WKTFormatter) Format(vt *tile.VectorTile) ([]byte, error) {
	if vt == nil {
		return nil, fmt.Errorf("cannot format empty tile")
	}

	var buf bytes.Buffer
	for _, feature := range vt.Features {
		fmt.Fprintf(&buf, "%d\t%s\t%s\n", feature.ID, feature.Layer, geometry.WKT(feature.Geometry, true))
	}
	return buf.Bytes(), nil
}

// FormatBatch concatenates the lines of all tiles
func (f *WKTFormatter) FormatBatch(tiles []*tile.VectorTile) ([]byte, error) {
	var buf bytes.Buffer
	for _, vt := range tiles {
		if vt == nil {
			continue
		}
		data, err := f.Format(vt)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type for WKT lines
func (f *WKTFormatter) ContentType() string {
	return "text/plain"
}

// NewFormatter creates a formatter based on the specified configuration
func NewFormatter(config *FormatterConfig) (Formatter, error) {
	switch config.Format {
	case FormatJSON:
		return NewJSONFormatter(config.Pretty, config.IncludeStats), nil
	case FormatWKT:
		return NewWKTFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", config.Format)
	}
}

// FormatSingle is a convenience function to format a single tile
func FormatSingle(vt *tile.VectorTile, format Format, pretty bool) ([]byte, error) {
	formatter, err := NewFormatter(&FormatterConfig{Format: format, Pretty: pretty})
	if err != nil {
		return nil, err
	}

	return formatter.Format(vt)
}
