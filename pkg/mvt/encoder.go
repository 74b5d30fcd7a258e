// pkg/mvt/encoder.go - Mapbox Vector Tile encoding
package mvt

import (
	"fmt"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// Encode builds tile z/x/y from named feature collections in WGS84
func Encode(collections map[string]*geojson.FeatureCollection, z, x, y int, gzipped bool) ([]byte, error) {
	tid := TileID{Z: z, X: x, Y: y}
	if err := tid.Validate(); err != nil {
		return nil, err
	}

	layers := mvt.NewLayers(collections)
	layers.ProjectToTile(maptile.New(uint32(x), uint32(y), maptile.Zoom(z)))

	var data []byte
	var err error
	if gzipped {
		data, err = mvt.MarshalGzipped(layers)
	} else {
		data, err = mvt.Marshal(layers)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal MVT data: %w", err)
	}
	return data, nil
}
