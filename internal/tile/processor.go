// internal/tile/processor.go - Tile payload processing implementation
package tile

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/valpere/tile_render/pkg/mvt"
)

// Processor turns raw MVT payloads into vector tiles
type Processor struct {
	decoder *mvt.Decoder
}

// NewProcessor creates a processor using decoder, or the default decoder when nil
func NewProcessor(decoder *mvt.Decoder) *Processor {
	if decoder == nil {
		decoder = mvt.NewDecoder()
	}
	return &Processor{decoder: decoder}
}

// Process decodes one payload. Gzip compressed payloads are detected and
// inflated. Features are returned layer by layer in layer name order;
// features without an identifier are numbered by their position in the tile.
func (p *Processor) Process(data []byte, item Item) (*VectorTile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty tile data for tile %s", item)
	}

	if isCompressed(data) {
		inflated, err := gunzip(data)
		if err != nil {
			return nil, fmt.Errorf("failed to inflate tile %s: %w", item, err)
		}
		data = inflated
	}

	decoded, err := p.decoder.Decode(data, item.Zoom, item.X, item.RowXYZ())
	if err != nil {
		return nil, fmt.Errorf("MVT decoding failed for tile %s: %w", item, err)
	}

	vt := &VectorTile{
		Item:     item,
		Features: make([]Feature, 0, decoded.GetFeatureCount()),
	}
	for _, name := range decoded.GetLayerNames() {
		for _, feature := range decoded.Layers[name].Features {
			id := int64(len(vt.Features))
			if feature.ID != nil {
				id = int64(*feature.ID)
			}
			vt.Features = append(vt.Features, Feature{
				ID:       id,
				Layer:    name,
				Geometry: feature.Geometry,
			})
		}
	}

	return vt, nil
}

// isCompressed checks for the gzip magic number
func isCompressed(data []byte) bool {
	return len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b
}

func gunzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
