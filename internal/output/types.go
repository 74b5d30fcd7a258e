// internal/output/types.go - Output handling types
package output

import (
	"fmt"
	"io"

	"github.com/valpere/tile_render/internal/tile"
)

// Format represents different output formats supported by the application
type Format string

const (
	FormatJSON Format = "json"
	FormatWKT  Format = "wkt"
	FormatPNG  Format = "png"
)

// Writer defines the interface for writing feature dumps of vector tiles
type Writer interface {
	Write(vt *tile.VectorTile) error
	WriteBatch(tiles []*tile.VectorTile) error
	Close() error
}

// Formatter defines the interface for formatting vector tiles
type Formatter interface {
	Format(vt *tile.VectorTile) ([]byte, error)
	FormatBatch(tiles []*tile.VectorTile) ([]byte, error)
	ContentType() string
}

// Destination represents an output destination (file, stdout, etc.)
type Destination interface {
	io.WriteCloser
	Name() string
	Size() int64
}

// WriterConfig contains configuration for creating writers
type WriterConfig struct {
	Format      Format
	Pretty      bool
	Compression bool
	Metadata    bool
}

// FormatterConfig contains configuration for creating formatters
type FormatterConfig struct {
	Format       Format
	Pretty       bool
	IncludeStats bool
}

// ParseFormat resolves a configured format name
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid output format: %s", name)
	}
	return f, nil
}

// String returns a string representation of the format
func (f Format) String() string {
	return string(f)
}

// IsValid checks if the format is supported
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatWKT, FormatPNG:
		return true
	default:
		return false
	}
}

// IsFeatureDump reports whether the format dumps features as text
func (f Format) IsFeatureDump() bool {
	return f == FormatJSON || f == FormatWKT
}
