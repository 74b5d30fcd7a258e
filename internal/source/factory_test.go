// internal/source/factory_test.go - Unit tests for the layer factory
package source

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/internal/config"
	"github.com/valpere/tile_render/internal/layer/bolt"
	"github.com/valpere/tile_render/internal/layer/local"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCreateLocalLayer(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Source: config.SourceConfig{
		Type:      "auto",
		BasePath:  dir,
		Extension: ".mvt",
		Scheme:    "tms",
		Layers:    []string{"roads"},
	}}

	l, closer, err := NewLayerFactory(cfg, quietLogger()).CreateLayer(3)
	require.NoError(t, err)
	defer closer()

	require.IsType(t, &local.Layer{}, l)
	require.Equal(t, 3, l.ID())
	require.Equal(t, filepath.Base(dir), l.Name())
	require.Equal(t, tile.SchemeTMS, l.Scheme())
}

func TestCreateBoltLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.db")
	storage, closeStorage, err := bolt.NewStorage(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, storage.SaveInfos(&bolt.Infos{
		Name:    "stored",
		Scheme:  "xyz",
		Extents: geometry.NewEnvelope(0, 0, 10, 10),
	}))
	require.NoError(t, closeStorage())

	cfg := &config.Config{Source: config.SourceConfig{Type: "auto", BoltPath: path}}
	l, closer, err := NewLayerFactory(cfg, quietLogger()).CreateLayer(1)
	require.NoError(t, err)
	defer closer()

	require.IsType(t, &bolt.Layer{}, l)
	require.Equal(t, "stored", l.Name())
	require.Equal(t, tile.SchemeXYZ, l.Scheme())

	extents, ok := l.Extents()
	require.True(t, ok)
	require.Equal(t, geometry.NewEnvelope(0, 0, 10, 10), extents)
}

func TestCreateLayerErrors(t *testing.T) {
	tests := []struct {
		name   string
		source config.SourceConfig
	}{
		{"missing directory", config.SourceConfig{Type: "local", BasePath: filepath.Join(t.TempDir(), "missing"), Scheme: "xyz"}},
		{"bolt without path", config.SourceConfig{Type: "bolt"}},
		{"missing store", config.SourceConfig{Type: "bolt", BoltPath: filepath.Join(t.TempDir(), "missing.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Source: tt.source}
			_, _, err := NewLayerFactory(cfg, quietLogger()).CreateLayer(1)
			require.Error(t, err)
		})
	}
}
