// internal/layer/local/local.go - Vector tile layer backed by a tile directory
package local

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valpere/tile_render/internal"
	"github.com/valpere/tile_render/internal/config"
	"github.com/valpere/tile_render/internal/layer"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

// Layer reads tiles laid out as {base_path}/{z}/{x}/{y}.mvt[.gz]
type Layer struct {
	*layer.Base

	config    *config.SourceConfig
	scheme    tile.Scheme
	processor *tile.Processor
	extents   layer.ExtentsCache
}

// New creates a layer over the configured tile directory. Rows on disk are
// counted in the configured scheme.
func New(id int, cfg *config.Config, processor *tile.Processor) (*Layer, error) {
	if err := config.ValidateLocalTileDirectory(cfg); err != nil {
		return nil, err
	}

	scheme, err := tile.ParseScheme(cfg.Source.Scheme)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeConfig, "invalid tile scheme", err)
	}

	if processor == nil {
		processor = tile.NewProcessor(nil)
	}

	name := cfg.Source.Name
	if name == "" {
		name = filepath.Base(cfg.Source.BasePath)
	}

	return &Layer{
		Base:      layer.NewBase(id, name),
		config:    &cfg.Source,
		scheme:    scheme,
		processor: processor,
	}, nil
}

// Scheme returns the row scheme of the files on disk
func (l *Layer) Scheme() tile.Scheme { return l.scheme }

// Tile reads and decodes one tile. A missing file is no data, not an error.
func (l *Layer) Tile(ctx context.Context, item tile.Item) (*tile.VectorTile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.Read(item)
	if err != nil {
		if internal.ErrorCodeOf(err) == internal.ErrorCodeNotFound {
			return nil, nil
		}
		return nil, err
	}

	return l.processor.Process(data, item)
}

// Read returns the raw, inflated payload of one tile
func (l *Layer) Read(item tile.Item) ([]byte, error) {
	// Build file path from the item
	filePath, err := l.buildFilePath(item)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeValidation, "failed to build file path", err)
	}

	// Check if file exists
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal.NewError(internal.ErrorCodeNotFound, fmt.Sprintf("tile file not found: %s", filePath), err)
		}
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("cannot access tile file: %s", filePath), err)
	}

	// Check if it's a regular file
	if !fileInfo.Mode().IsRegular() {
		return nil, internal.NewError(internal.ErrorCodeValidation, fmt.Sprintf("path is not a regular file: %s", filePath), nil)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("failed to open tile file: %s", filePath), err)
	}
	defer file.Close()

	// Handle compressed files
	var reader io.Reader = file
	if isCompressedFile(filePath) {
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, internal.NewError(internal.ErrorCodeProcessing, fmt.Sprintf("failed to create gzip reader for: %s", filePath), err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("failed to read tile file: %s", filePath), err)
	}

	return data, nil
}

// Extents returns the union of the envelopes of all tiles on disk
func (l *Layer) Extents() (geometry.Envelope, bool) {
	return l.extents.Get(func() (geometry.Envelope, bool) {
		items, err := l.ListAvailableTiles()
		if err != nil || len(items) == 0 {
			return geometry.EmptyEnvelope(), false
		}

		env := geometry.EmptyEnvelope()
		for _, item := range items {
			env = env.Extend(item.Envelope())
		}
		return env, true
	})
}

// buildFilePath constructs the file path of an item
func (l *Layer) buildFilePath(item tile.Item) (string, error) {
	if err := item.Validate(); err != nil {
		return "", fmt.Errorf("invalid coordinates: %w", err)
	}

	stored := item.In(l.scheme)
	extension := l.config.Extension
	if l.config.Compressed {
		extension += ".gz"
	}

	// Build path: {base_path}/{z}/{x}/{y}.mvt
	return filepath.Join(
		l.config.BasePath,
		fmt.Sprintf("%d", stored.Zoom),
		fmt.Sprintf("%d", stored.X),
		fmt.Sprintf("%d%s", stored.Y, extension),
	), nil
}

// isCompressedFile determines if a file is compressed based on its extension
func isCompressedFile(filePath string) bool {
	return strings.HasSuffix(strings.ToLower(filePath), ".gz")
}

// ListAvailableTiles scans the directory for tiles, addressed in the layer
// scheme
func (l *Layer) ListAvailableTiles() ([]tile.Item, error) {
	var items []tile.Item

	err := filepath.Walk(l.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if info.IsDir() {
			return nil
		}

		item, err := l.parseItemFromPath(path)
		if err != nil {
			// Skip files that don't match the expected pattern
			return nil
		}

		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, "failed to scan tile directory", err)
	}

	return items, nil
}

// parseItemFromPath extracts tile coordinates from a file path
func (l *Layer) parseItemFromPath(filePath string) (tile.Item, error) {
	relPath, err := filepath.Rel(l.config.BasePath, filePath)
	if err != nil {
		return tile.Item{}, err
	}

	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) != 3 {
		return tile.Item{}, fmt.Errorf("invalid path structure: %s", relPath)
	}

	var z, x, y int
	if _, err := fmt.Sscanf(parts[0], "%d", &z); err != nil {
		return tile.Item{}, fmt.Errorf("invalid Z coordinate: %s", parts[0])
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &x); err != nil {
		return tile.Item{}, fmt.Errorf("invalid X coordinate: %s", parts[1])
	}

	// Remove .gz and .mvt
	filename := parts[2]
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	if _, err := fmt.Sscanf(filename, "%d", &y); err != nil {
		return tile.Item{}, fmt.Errorf("invalid Y coordinate: %s", filename)
	}

	item := tile.NewItem(x, y, z, l.scheme)
	if err := item.Validate(); err != nil {
		return tile.Item{}, err
	}
	return item, nil
}

// ValidateTileExists checks if a specific tile exists in the directory
func (l *Layer) ValidateTileExists(item tile.Item) error {
	filePath, err := l.buildFilePath(item)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return internal.NewError(internal.ErrorCodeNotFound, fmt.Sprintf("tile %s not found", item), err)
		}
		return internal.NewError(internal.ErrorCodeFileSystem, fmt.Sprintf("cannot access tile %s", item), err)
	}

	return nil
}

// GetTileInfo returns information about a tile file
func (l *Layer) GetTileInfo(item tile.Item) (*TileFileInfo, error) {
	filePath, err := l.buildFilePath(item)
	if err != nil {
		return nil, err
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}

	return &TileFileInfo{
		Path:         filePath,
		Size:         fileInfo.Size(),
		ModTime:      fileInfo.ModTime(),
		IsCompressed: isCompressedFile(filePath),
	}, nil
}

// TileFileInfo contains information about a local tile file
type TileFileInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mod_time"`
	IsCompressed bool      `json:"is_compressed"`
}
