// internal/output/output_test.go - Unit tests for feature dumps and writers
package output

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

func sampleTile() *tile.VectorTile {
	line := geometry.NewLineString(geometry.XY(0, 0), geometry.XY(1, 1))
	return &tile.VectorTile{
		Item: tile.Item{X: 1, Y: 2, Zoom: 3},
		Features: []tile.Feature{
			{ID: 7, Layer: "poi", Geometry: geometry.NewPoint(1, 2)},
			{ID: 8, Layer: "roads", Geometry: line},
		},
	}
}

func TestJSONFormatter(t *testing.T) {
	data, err := NewJSONFormatter(false, true).Format(sampleTile())
	require.NoError(t, err)

	var doc struct {
		Tile     string `json:"tile"`
		Features []struct {
			ID       int64           `json:"id"`
			Layer    string          `json:"layer"`
			Geometry json.RawMessage `json:"geometry"`
		} `json:"features"`
		Metadata map[string]any `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "3/1/2", doc.Tile)
	require.Len(t, doc.Features, 2)
	require.Equal(t, int64(7), doc.Features[0].ID)
	require.Equal(t, "roads", doc.Features[1].Layer)
	require.EqualValues(t, 2, doc.Metadata["feature_count"])

	g, err := geometry.Unmarshal(doc.Features[1].Geometry)
	require.NoError(t, err)
	require.Equal(t, geometry.TypeLineString, g.Type())

	_, err = NewJSONFormatter(false, false).Format(nil)
	require.Error(t, err)
}

func TestJSONFormatterBatch(t *testing.T) {
	data, err := NewJSONFormatter(true, true).FormatBatch([]*tile.VectorTile{sampleTile(), nil, sampleTile()})
	require.NoError(t, err)

	var doc struct {
		Tiles   []json.RawMessage `json:"tiles"`
		Summary map[string]any    `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Tiles, 2)
	require.EqualValues(t, 4, doc.Summary["total_features"])
}

func TestWKTFormatter(t *testing.T) {
	data, err := NewWKTFormatter().Format(sampleTile())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "7\tpoi\tPOINT (1 2)", lines[0])
	require.Equal(t, "8\troads\tLINESTRING (0 0, 1 1)", lines[1])
}

func TestNewFormatterRejectsPNG(t *testing.T) {
	_, err := NewFormatter(&FormatterConfig{Format: FormatPNG})
	require.Error(t, err)

	_, err = ParseFormat("svg")
	require.Error(t, err)

	f, err := ParseFormat("wkt")
	require.NoError(t, err)
	require.True(t, f.IsFeatureDump())
	require.False(t, FormatPNG.IsFeatureDump())
}

func TestFileWriterCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tile.wkt")
	w, err := NewFileWriter(&WriterConfig{Format: FormatWKT, Compression: true}, path)
	require.NoError(t, err)
	require.Equal(t, path+".gz", w.Name())
	require.NoError(t, w.Write(sampleTile()))
	require.NoError(t, w.Close())

	// Only the compressed file is created
	_, err = os.Stat(path)
	require.True(t, errors.Is(err, os.ErrNotExist))

	f, err := os.Open(path + ".gz")
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	require.Contains(t, string(data), "POINT (1 2)")
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewStreamWriter(&buf, FormatJSON, false)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleTile()))
	require.NoError(t, w.Close())
	require.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

type fakeImage struct{ payload []byte }

func (f fakeImage) EncodePNG(w io.Writer) error {
	_, err := w.Write(f.payload)
	return err
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	name, size, err := WritePNG(fakeImage{payload: []byte("png-bytes")}, path, false)
	require.NoError(t, err)
	require.Equal(t, path, name)
	require.Equal(t, int64(9), size)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))
}
