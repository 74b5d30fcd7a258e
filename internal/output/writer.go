// internal/output/writer.go - Output writing implementation
package output

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/tile_render/internal/tile"
)

// FileWriter writes output to files with optional compression
type FileWriter struct {
	formatter   Formatter
	destination Destination
}

// NewFileWriter creates a new file-based writer
func NewFileWriter(config *WriterConfig, destination string) (*FileWriter, error) {
	formatter, err := NewFormatter(&FormatterConfig{
		Format:       config.Format,
		Pretty:       config.Pretty,
		IncludeStats: config.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	dest, err := NewFileDestination(destination, config.Compression)
	if err != nil {
		return nil, fmt.Errorf("failed to create file destination: %w", err)
	}

	return &FileWriter{
		formatter:   formatter,
		destination: dest,
	}, nil
}

// Name returns the path written to
func (w *FileWriter) Name() string {
	return w.destination.Name()
}

// Write writes a single tile to the output destination
func (w *FileWriter) Write(vt *tile.VectorTile) error {
	data, err := w.formatter.Format(vt)
	if err != nil {
		return fmt.Errorf("formatting failed: %w", err)
	}

	if _, err := w.destination.Write(data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	return nil
}

// WriteBatch writes multiple tiles as a batch operation
func (w *FileWriter) WriteBatch(tiles []*tile.VectorTile) error {
	data, err := w.formatter.FormatBatch(tiles)
	if err != nil {
		return fmt.Errorf("batch formatting failed: %w", err)
	}

	if _, err := w.destination.Write(data); err != nil {
		return fmt.Errorf("batch write failed: %w", err)
	}

	return nil
}

// Close closes the writer and underlying destination
func (w *FileWriter) Close() error {
	return w.destination.Close()
}

// StreamWriter writes output to a stream such as standard output
type StreamWriter struct {
	formatter Formatter
	out       io.Writer
}

// NewStreamWriter creates a writer on out
func NewStreamWriter(out io.Writer, format Format, pretty bool) (*StreamWriter, error) {
	formatter, err := NewFormatter(&FormatterConfig{
		Format: format,
		Pretty: pretty,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	return &StreamWriter{formatter: formatter, out: out}, nil
}

// Write writes a single tile
func (w *StreamWriter) Write(vt *tile.VectorTile) error {
	data, err := w.formatter.Format(vt)
	if err != nil {
		return fmt.Errorf("formatting failed: %w", err)
	}
	return w.writeLine(data)
}

// WriteBatch writes multiple tiles
func (w *StreamWriter) WriteBatch(tiles []*tile.VectorTile) error {
	data, err := w.formatter.FormatBatch(tiles)
	if err != nil {
		return fmt.Errorf("batch formatting failed: %w", err)
	}
	return w.writeLine(data)
}

func (w *StreamWriter) writeLine(data []byte) error {
	if _, err := w.out.Write(data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	// Add newline for readability
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := w.out.Write([]byte("\n"))
		return err
	}
	return nil
}

// Close is a no-op for stream writers
func (w *StreamWriter) Close() error {
	return nil
}

// fileDestination implements the Destination interface for file output
type fileDestination struct {
	file   *os.File
	writer io.WriteCloser
	name   string
	size   int64
}

// NewFileDestination creates a file, gzip compressed when compression is set.
// Compressed paths get a .gz suffix.
func NewFileDestination(path string, compression bool) (Destination, error) {
	if compression && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	var writer io.WriteCloser = file
	if compression {
		writer = gzip.NewWriter(file)
	}

	return &fileDestination{
		file:   file,
		writer: writer,
		name:   path,
	}, nil
}

// Write implements io.Writer
func (d *fileDestination) Write(p []byte) (n int, err error) {
	n, err = d.writer.Write(p)
	d.size += int64(n)
	return n, err
}

// Close implements io.Closer
func (d *fileDestination) Close() error {
	if d.writer != d.file {
		if err := d.writer.Close(); err != nil {
			d.file.Close()
			return err
		}
	}
	return d.file.Close()
}

// Name returns the destination file path
func (d *fileDestination) Name() string {
	return d.name
}

// Size returns the number of bytes written, before compression
func (d *fileDestination) Size() int64 {
	return d.size
}

// NewWriter creates the appropriate writer based on configuration
func NewWriter(config *WriterConfig, destination string) (Writer, error) {
	if destination == "" || destination == "-" {
		return NewStreamWriter(os.Stdout, config.Format, config.Pretty)
	}

	return NewFileWriter(config, destination)
}
