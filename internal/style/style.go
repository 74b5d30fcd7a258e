// internal/style/style.go - Feature styles
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/valpere/tile_render/internal/display"
	"github.com/valpere/tile_render/pkg/geometry"
)

// ErrFormat is returned for unknown or malformed style JSON
var ErrFormat = fmt.Errorf("malformed style: %w", geometry.ErrFormat)

// Style draws geometries onto a surface. Implementations are immutable
// values: modifiers return changed copies, so a style handed to concurrent
// draws is never written to.
type Style interface {
	// Name is the persisted discriminator of the style kind
	Name() string
	Draw(g geometry.Geometry, surface display.Surface) error
}

// Color is a non premultiplied colour persisted as "#rrggbbaa"
type Color color.NRGBA

// RGBA implements color.Color
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// Hex returns the colour as "#rrggbbaa"
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor reads "#rrggbb" or "#rrggbbaa"
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: bad colour %q", ErrFormat, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: bad colour %q", ErrFormat, s)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustColor is ParseColor for constants
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
