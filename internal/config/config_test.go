// internal/config/config_test.go - Unit tests for configuration loading
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/internal"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, runtime.NumCPU(), cfg.Render.Threads)
	require.Equal(t, 650*time.Millisecond, cfg.Render.TerminateTimeout)
	require.Equal(t, 10, cfg.Render.NotifySteps)
	require.Equal(t, "xyz", cfg.Source.Scheme)
	require.Equal(t, "png", cfg.Output.Format)
	require.Equal(t, internal.SourceTypeLocal, cfg.DetermineSourceType())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"source type", "source.type", "http"},
		{"scheme", "source.scheme", "google"},
		{"extension", "source.extension", "mvt"},
		{"threads", "render.threads", 0},
		{"too many threads", "render.threads", 5000},
		{"timeout", "render.terminate_timeout", "0s"},
		{"notify steps", "render.notify_steps", -1},
		{"format", "output.format", "svg"},
		{"width", "output.width", 0},
		{"log level", "logging.level", "loud"},
		{"log file", "logging.output", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			viper.Set(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestDetermineSourceType(t *testing.T) {
	tests := []struct {
		name   string
		source SourceConfig
		want   internal.SourceType
	}{
		{"auto without store", SourceConfig{Type: "auto", BasePath: "/tiles"}, internal.SourceTypeLocal},
		{"auto with store", SourceConfig{Type: "auto", BasePath: "/tiles", BoltPath: "tiles.db"}, internal.SourceTypeBolt},
		{"explicit local", SourceConfig{Type: "local", BoltPath: "tiles.db"}, internal.SourceTypeLocal},
		{"explicit bolt", SourceConfig{Type: "bolt"}, internal.SourceTypeBolt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Source: tt.source}
			require.Equal(t, tt.want, cfg.DetermineSourceType())
		})
	}
}

func TestGetTilePath(t *testing.T) {
	cfg := &Config{Source: SourceConfig{BasePath: "/tiles", Extension: ".pbf", Compressed: true}}
	require.Equal(t, filepath.Join("/tiles", "3", "1", "2.pbf.gz"), cfg.GetTilePath(3, 1, 2))

	cfg.Source.BasePath = ""
	require.Empty(t, cfg.GetTilePath(3, 1, 2))
}

func TestValidateLocalTileDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tile.mvt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	cfg := &Config{Source: SourceConfig{BasePath: dir}}
	require.NoError(t, ValidateLocalTileDirectory(cfg))

	cfg.Source.BasePath = filepath.Join(dir, "missing")
	require.Equal(t, internal.ErrorCodeNotFound, internal.ErrorCodeOf(ValidateLocalTileDirectory(cfg)))

	cfg.Source.BasePath = file
	require.Equal(t, internal.ErrorCodeValidation, internal.ErrorCodeOf(ValidateLocalTileDirectory(cfg)))

	cfg.Source.BasePath = ""
	require.Error(t, ValidateLocalTileDirectory(cfg))
}
