// internal/tile/processor_test.go - Unit tests for payload processing
package tile

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/pkg/geometry"
	"github.com/valpere/tile_render/pkg/mvt"
)

func encodeSample(t *testing.T, item Item, gzipped bool) []byte {
	t.Helper()

	center := item.Tile().Center()
	buildings := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{center[0], center[1]})
	f.ID = 42
	buildings.Append(f)

	water := geojson.NewFeatureCollection()
	water.Append(geojson.NewFeature(orb.Point{center[0], center[1]}))

	xyz := item.In(SchemeXYZ)
	data, err := mvt.Encode(map[string]*geojson.FeatureCollection{
		"water":     water,
		"buildings": buildings,
	}, xyz.Zoom, xyz.X, xyz.Y, gzipped)
	require.NoError(t, err)
	return data
}

func TestProcessorProcess(t *testing.T) {
	item := NewItem(5, 9, 4, SchemeTMS)

	for _, gzipped := range []bool{false, true} {
		vt, err := NewProcessor(nil).Process(encodeSample(t, item, gzipped), item)
		require.NoError(t, err)
		require.Equal(t, item, vt.Item)
		require.Equal(t, 2, vt.Size())

		require.Equal(t, "buildings", vt.Features[0].Layer)
		require.Equal(t, int64(42), vt.Features[0].ID)
		require.Equal(t, "water", vt.Features[1].Layer)
		require.Equal(t, int64(1), vt.Features[1].ID)

		p, ok := vt.Features[0].Geometry.(*geometry.Point)
		require.True(t, ok)
		require.True(t, item.Envelope().ContainsPoint(p.X, p.Y))
	}
}

func TestProcessorErrors(t *testing.T) {
	p := NewProcessor(nil)
	item := NewItem(0, 0, 0, SchemeTMS)

	_, err := p.Process(nil, item)
	require.Error(t, err)

	_, err = p.Process([]byte{0x1f, 0x8b, 0x00, 0x01}, item)
	require.Error(t, err)
}

func TestVectorTileSizeNil(t *testing.T) {
	var vt *VectorTile
	require.Equal(t, 0, vt.Size())
}
