// internal/tile/types.go - Tile addressing and vector tile types
package tile

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/maptile"

	"github.com/valpere/tile_render/pkg/geometry"
)

// MaxZoom is the deepest zoom level tiles are addressed at
const MaxZoom = 22

// WebMercatorMax is the half width of the Web Mercator world in metres
const WebMercatorMax = 20037508.342789244

// Scheme selects the direction tile rows are counted in
type Scheme int

const (
	// SchemeTMS counts rows from the south
	SchemeTMS Scheme = iota
	// SchemeXYZ counts rows from the north
	SchemeXYZ
)

// String returns the configuration name of the scheme
func (s Scheme) String() string {
	if s == SchemeXYZ {
		return "xyz"
	}
	return "tms"
}

// ParseScheme resolves a configuration name
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "tms", "":
		return SchemeTMS, nil
	case "xyz", "osm":
		return SchemeXYZ, nil
	default:
		return SchemeTMS, fmt.Errorf("unknown tile scheme: %s", name)
	}
}

// Item addresses one tile. Y is counted in Scheme.
type Item struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Zoom   int    `json:"z"`
	Scheme Scheme `json:"-"`
}

// NewItem creates a tile item
func NewItem(x, y, zoom int, scheme Scheme) Item {
	return Item{X: x, Y: y, Zoom: zoom, Scheme: scheme}
}

// RowXYZ returns the tile row counted from the north
func (it Item) RowXYZ() int {
	if it.Scheme == SchemeXYZ {
		return it.Y
	}
	return flipY(it.Y, it.Zoom)
}

// In returns the same tile addressed in another scheme
func (it Item) In(scheme Scheme) Item {
	if scheme == it.Scheme {
		return it
	}
	return Item{X: it.X, Y: flipY(it.Y, it.Zoom), Zoom: it.Zoom, Scheme: scheme}
}

// Tile returns the orb tile identity
func (it Item) Tile() maptile.Tile {
	return maptile.New(uint32(it.X), uint32(it.RowXYZ()), maptile.Zoom(it.Zoom))
}

// Envelope returns the tile extent in Web Mercator metres
func (it Item) Envelope() geometry.Envelope {
	size := tileSize(it.Zoom)
	minX := -WebMercatorMax + float64(it.X)*size
	maxY := WebMercatorMax - float64(it.RowXYZ())*size
	return geometry.Envelope{MinX: minX, MinY: maxY - size, MaxX: minX + size, MaxY: maxY}
}

// Validate checks the item lies inside the tile pyramid
func (it Item) Validate() error {
	return ValidateCoordinates(it.Zoom, it.X, it.Y)
}

// String returns z/x/y
func (it Item) String() string {
	return fmt.Sprintf("%d/%d/%d", it.Zoom, it.X, it.Y)
}

// Feature is one drawable element of a vector tile
type Feature struct {
	ID       int64             `json:"id"`
	Layer    string            `json:"layer,omitempty"`
	Geometry geometry.Geometry `json:"-"`
}

// VectorTile holds the features of one tile in source order. It is owned by
// the layer that produced it and must not be modified by readers.
type VectorTile struct {
	Item     Item      `json:"item"`
	Features []Feature `json:"features"`
}

// Size returns the number of features
func (vt *VectorTile) Size() int {
	if vt == nil {
		return 0
	}
	return len(vt.Features)
}

// TileRange represents a range of tiles at one zoom level
type TileRange struct {
	Zoom int `json:"z"`
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Count returns the total number of tiles in the range
func (tr TileRange) Count() int {
	if tr.MaxX < tr.MinX || tr.MaxY < tr.MinY {
		return 0
	}
	return (tr.MaxX - tr.MinX + 1) * (tr.MaxY - tr.MinY + 1)
}

// ValidateCoordinates ensures tile coordinates are within valid bounds
func ValidateCoordinates(z, x, y int) error {
	if z < 0 || z > MaxZoom {
		return fmt.Errorf("invalid zoom level %d: must be between 0 and %d", z, MaxZoom)
	}

	maxTile := 1 << uint(z)
	if x < 0 || x >= maxTile {
		return fmt.Errorf("invalid x coordinate %d for zoom %d: must be between 0 and %d", x, z, maxTile-1)
	}

	if y < 0 || y >= maxTile {
		return fmt.Errorf("invalid y coordinate %d for zoom %d: must be between 0 and %d", y, z, maxTile-1)
	}

	return nil
}

func tileSize(zoom int) float64 {
	return 2 * WebMercatorMax / float64(uint(1)<<uint(zoom))
}
