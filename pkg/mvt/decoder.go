// pkg/mvt/decoder.go - Mapbox Vector Tile decoding implementation
package mvt

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/orb/simplify"

	"github.com/valpere/tile_render/pkg/geometry"
)

// Coordinate systems the decoder can project features into
const (
	CoordSystemWebMercator = "web-mercator"
	CoordSystemWGS84       = "wgs84"
)

// Options control how tiles are decoded
type Options struct {
	Extent            int      `json:"extent"`
	LayerFilter       []string `json:"layer_filter,omitempty"` // Only include specified layers
	SimplifyTolerance float64  `json:"simplify_tolerance"`     // Douglas-Peucker threshold in output units, 0 disables
	CoordinateSystem  string   `json:"coordinate_system"`      // "web-mercator" or "wgs84"
}

// DefaultOptions returns options for web mercator output at the standard extent
func DefaultOptions() *Options {
	return &Options{
		Extent:           4096,
		CoordinateSystem: CoordSystemWebMercator,
	}
}

// Validate checks the decoding options
func (o *Options) Validate() error {
	if o.Extent <= 0 {
		return fmt.Errorf("extent must be positive, got %d", o.Extent)
	}
	if o.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify tolerance must not be negative, got %g", o.SimplifyTolerance)
	}
	switch o.CoordinateSystem {
	case CoordSystemWebMercator, CoordSystemWGS84:
	default:
		return fmt.Errorf("unsupported coordinate system: %s", o.CoordinateSystem)
	}
	return nil
}

// Decoder handles decoding of Mapbox Vector Tiles from Protocol Buffer format
type Decoder struct {
	options Options
}

// NewDecoder creates a new MVT decoder with default settings
func NewDecoder() *Decoder {
	return &Decoder{options: *DefaultOptions()}
}

// NewDecoderWithOptions creates a decoder with custom options
func NewDecoderWithOptions(options *Options) (*Decoder, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoder options: %w", err)
	}
	return &Decoder{options: *options}, nil
}

// DecodedTile represents a decoded MVT tile with its layers and metadata
type DecodedTile struct {
	Layers  map[string]*DecodedLayer `json:"layers"`
	Extent  int                      `json:"extent"`
	Version int                      `json:"version"`
	TileID  TileID                   `json:"tile_id"`
}

// DecodedLayer represents a single layer within an MVT tile
type DecodedLayer struct {
	Name     string            `json:"name"`
	Features []*DecodedFeature `json:"features"`
	Extent   int               `json:"extent"`
	Version  int               `json:"version"`
}

// DecodedFeature represents a single feature within a layer
type DecodedFeature struct {
	ID       *uint64                `json:"id,omitempty"`
	Tags     map[string]interface{} `json:"tags"`
	Type     geometry.Type          `json:"type"`
	Geometry geometry.Geometry      `json:"-"`
}

// TileID represents the tile coordinates and zoom level
type TileID struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Decode decodes a Mapbox Vector Tile from binary Protocol Buffer data.
// x and y address the tile with rows counted from the north.
func (d *Decoder) Decode(data []byte, z, x, y int) (*DecodedTile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty tile data")
	}
	tid := TileID{Z: z, X: x, Y: y}
	if err := tid.Validate(); err != nil {
		return nil, err
	}

	layers, err := mvt.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal MVT data: %w", err)
	}

	decodedTile := &DecodedTile{
		Layers:  make(map[string]*DecodedLayer),
		Extent:  d.options.Extent,
		Version: 2, // MVT specification version
		TileID:  tid,
	}

	for _, layer := range layers {
		if len(d.options.LayerFilter) > 0 && !contains(d.options.LayerFilter, layer.Name) {
			continue
		}
		decodedTile.Layers[layer.Name] = d.decodeLayer(layer, z, x, y)
	}

	return decodedTile, nil
}

// decodeLayer processes a single layer from the MVT data
func (d *Decoder) decodeLayer(layer *mvt.Layer, z, x, y int) *DecodedLayer {
	extent := int(layer.Extent)
	if extent == 0 {
		extent = d.options.Extent
	}

	decodedLayer := &DecodedLayer{
		Name:     layer.Name,
		Features: make([]*DecodedFeature, 0, len(layer.Features)),
		Extent:   extent,
		Version:  int(layer.Version),
	}

	for _, feature := range layer.Features {
		decodedFeature, err := d.decodeFeature(feature, extent, z, x, y)
		if err != nil {
			// Features with unusable geometry are skipped
			continue
		}
		decodedLayer.Features = append(decodedLayer.Features, decodedFeature)
	}

	return decodedLayer
}

// decodeFeature projects a single feature and converts it into the geometry model
func (d *Decoder) decodeFeature(feature *geojson.Feature, extent, z, x, y int) (*DecodedFeature, error) {
	if feature.Geometry == nil {
		return nil, fmt.Errorf("feature has no geometry")
	}

	// Decoded geometries are owned here, projecting in place is fine
	projected := project.Geometry(feature.Geometry, tileProjection(extent, z, x, y))
	if d.options.CoordinateSystem == CoordSystemWGS84 {
		projected = project.Geometry(projected, project.Mercator.ToWGS84)
	}
	if d.options.SimplifyTolerance > 0 {
		projected = simplify.DouglasPeucker(d.options.SimplifyTolerance).Simplify(projected)
	}

	geom, err := geometry.FromOrb(projected)
	if err != nil {
		return nil, err
	}

	decodedFeature := &DecodedFeature{
		Tags:     feature.Properties,
		Type:     geom.Type(),
		Geometry: geom,
	}
	if id, ok := featureID(feature.ID); ok {
		decodedFeature.ID = &id
	}

	return decodedFeature, nil
}

// featureID normalises the numeric identifiers orb produces
func featureID(id interface{}) (uint64, bool) {
	switch v := id.(type) {
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case float64:
		return uint64(v), true
	case int:
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetLayerNames returns the names of all layers in the decoded tile, sorted
func (dt *DecodedTile) GetLayerNames() []string {
	names := make([]string, 0, len(dt.Layers))
	for name := range dt.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetFeatureCount returns the total number of features across all layers
func (dt *DecodedTile) GetFeatureCount() int {
	count := 0
	for _, layer := range dt.Layers {
		count += len(layer.Features)
	}
	return count
}

// HasLayer checks if the tile contains a specific layer
func (dt *DecodedTile) HasLayer(layerName string) bool {
	_, exists := dt.Layers[layerName]
	return exists
}

// IsEmpty returns true if the tile contains no features
func (dt *DecodedTile) IsEmpty() bool {
	return dt.GetFeatureCount() == 0
}

// String returns a string representation of the tile ID
func (tid TileID) String() string {
	return fmt.Sprintf("%d/%d/%d", tid.Z, tid.X, tid.Y)
}

// Validate checks if the tile coordinates are valid
func (tid TileID) Validate() error {
	if tid.Z < 0 || tid.Z > 22 {
		return fmt.Errorf("invalid zoom level %d: must be between 0 and 22", tid.Z)
	}

	maxTile := 1 << uint(tid.Z)
	if tid.X < 0 || tid.X >= maxTile {
		return fmt.Errorf("invalid X coordinate %d for zoom %d: must be between 0 and %d", tid.X, tid.Z, maxTile-1)
	}

	if tid.Y < 0 || tid.Y >= maxTile {
		return fmt.Errorf("invalid Y coordinate %d for zoom %d: must be between 0 and %d", tid.Y, tid.Z, maxTile-1)
	}

	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
