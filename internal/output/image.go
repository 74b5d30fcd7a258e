// internal/output/image.go - Writing rendered images
package output

import (
	"fmt"
	"io"
	"os"
)

// PNGEncoder is a rendered surface that can encode itself
type PNGEncoder interface {
	EncodePNG(w io.Writer) error
}

// WritePNG encodes img to path, or to stdout when path is "" or "-".
// It returns the path written and the number of bytes before compression.
func WritePNG(img PNGEncoder, path string, compression bool) (string, int64, error) {
	if path == "" || path == "-" {
		if err := img.EncodePNG(os.Stdout); err != nil {
			return "-", 0, fmt.Errorf("failed to encode PNG: %w", err)
		}
		return "-", 0, nil
	}

	dest, err := NewFileDestination(path, compression)
	if err != nil {
		return "", 0, err
	}

	if err := img.EncodePNG(dest); err != nil {
		dest.Close()
		return dest.Name(), dest.Size(), fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := dest.Close(); err != nil {
		return dest.Name(), dest.Size(), fmt.Errorf("failed to close %s: %w", dest.Name(), err)
	}
	return dest.Name(), dest.Size(), nil
}
