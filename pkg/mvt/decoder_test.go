// pkg/mvt/decoder_test.go - Unit tests for MVT decoder
package mvt

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"github.com/valpere/tile_render/pkg/geometry"
)

func sampleTile(t *testing.T) []byte {
	t.Helper()

	places := geojson.NewFeatureCollection()
	point := geojson.NewFeature(orb.Point{10, 20})
	point.ID = 7
	point.Properties["name"] = "somewhere"
	places.Append(point)

	roads := geojson.NewFeatureCollection()
	roads.Append(geojson.NewFeature(orb.LineString{{-20, -10}, {30, 40}}))

	data, err := Encode(map[string]*geojson.FeatureCollection{
		"places": places,
		"roads":  roads,
	}, 0, 0, 0, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return data
}

func TestNewDecoder(t *testing.T) {
	decoder := NewDecoder()
	if decoder.options.Extent != 4096 {
		t.Errorf("Expected default extent 4096, got %d", decoder.options.Extent)
	}
	if decoder.options.CoordinateSystem != CoordSystemWebMercator {
		t.Errorf("Expected web mercator output, got %s", decoder.options.CoordinateSystem)
	}
}

func TestNewDecoderWithOptions(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		wantErr bool
	}{
		{"valid", Options{Extent: 512, CoordinateSystem: CoordSystemWGS84}, false},
		{"zero extent", Options{Extent: 0, CoordinateSystem: CoordSystemWGS84}, true},
		{"negative tolerance", Options{Extent: 4096, SimplifyTolerance: -1, CoordinateSystem: CoordSystemWGS84}, true},
		{"unknown crs", Options{Extent: 4096, CoordinateSystem: "epsg:2056"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoderWithOptions(&tt.options)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDecoderWithOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_EmptyData(t *testing.T) {
	decoder := NewDecoder()
	_, err := decoder.Decode([]byte{}, 1, 1, 1)
	if err == nil {
		t.Fatal("Expected error for empty data")
	}
	if err.Error() != "empty tile data" {
		t.Errorf("Expected 'empty tile data' error, got %s", err.Error())
	}
}

func TestDecode_WebMercator(t *testing.T) {
	decoded, err := NewDecoder().Decode(sampleTile(t), 0, 0, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got := decoded.GetLayerNames(); len(got) != 2 || got[0] != "places" || got[1] != "roads" {
		t.Fatalf("GetLayerNames() = %v, want [places roads]", got)
	}
	if decoded.GetFeatureCount() != 2 {
		t.Errorf("GetFeatureCount() = %d, want 2", decoded.GetFeatureCount())
	}

	feature := decoded.Layers["places"].Features[0]
	if feature.ID == nil || *feature.ID != 7 {
		t.Errorf("feature ID = %v, want 7", feature.ID)
	}
	if feature.Tags["name"] != "somewhere" {
		t.Errorf("feature name tag = %v", feature.Tags["name"])
	}

	point, ok := feature.Geometry.(*geometry.Point)
	if !ok {
		t.Fatalf("geometry = %T, want *geometry.Point", feature.Geometry)
	}
	want := project.WGS84.ToMercator(orb.Point{10, 20})
	// one tile unit at zoom 0 is roughly 9.8km
	if math.Abs(point.X-want[0]) > 10000 || math.Abs(point.Y-want[1]) > 10000 {
		t.Errorf("point = (%f, %f), want close to %v", point.X, point.Y, want)
	}

	if decoded.Layers["roads"].Features[0].Type != geometry.TypeLineString {
		t.Errorf("road type = %v, want LineString", decoded.Layers["roads"].Features[0].Type)
	}
}

func TestDecode_WGS84AndLayerFilter(t *testing.T) {
	decoder, err := NewDecoderWithOptions(&Options{
		Extent:           4096,
		LayerFilter:      []string{"places"},
		CoordinateSystem: CoordSystemWGS84,
	})
	if err != nil {
		t.Fatalf("NewDecoderWithOptions() error = %v", err)
	}

	decoded, err := decoder.Decode(sampleTile(t), 0, 0, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.HasLayer("roads") {
		t.Error("Expected roads layer to be filtered out")
	}

	point := decoded.Layers["places"].Features[0].Geometry.(*geometry.Point)
	if math.Abs(point.X-10) > 0.1 || math.Abs(point.Y-20) > 0.1 {
		t.Errorf("point = (%f, %f), want close to (10, 20)", point.X, point.Y)
	}
}

func TestDecode_InvalidTileID(t *testing.T) {
	_, err := NewDecoder().Decode(sampleTile(t), 1, 2, 0)
	if err == nil {
		t.Error("Expected error for out of range tile")
	}
}

func TestTileIDString(t *testing.T) {
	tid := TileID{Z: 14, X: 8362, Y: 5956}
	expected := "14/8362/5956"
	if tid.String() != expected {
		t.Errorf("Expected %s, got %s", expected, tid.String())
	}
}

func TestTileIDValidate(t *testing.T) {
	tests := []struct {
		name    string
		tid     TileID
		wantErr bool
	}{
		{"valid coordinates", TileID{14, 8362, 5956}, false},
		{"invalid zoom negative", TileID{-1, 0, 0}, true},
		{"invalid zoom too high", TileID{23, 0, 0}, true},
		{"invalid x negative", TileID{1, -1, 0}, true},
		{"invalid x too high", TileID{1, 2, 0}, true},
		{"invalid y negative", TileID{1, 0, -1}, true},
		{"invalid y too high", TileID{1, 0, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("TileID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTileProjection(t *testing.T) {
	proj := tileProjection(4096, 0, 0, 0)

	tests := []struct {
		name string
		in   orb.Point
		want orb.Point
	}{
		{"north west corner", orb.Point{0, 0}, orb.Point{-WebMercatorMax, WebMercatorMax}},
		{"centre", orb.Point{2048, 2048}, orb.Point{0, 0}},
		{"south east corner", orb.Point{4096, 4096}, orb.Point{WebMercatorMax, -WebMercatorMax}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := proj(tt.in); got != tt.want {
				t.Errorf("tileProjection(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodedTileIsEmpty(t *testing.T) {
	emptyTile := &DecodedTile{
		Layers: map[string]*DecodedLayer{},
	}
	if !emptyTile.IsEmpty() {
		t.Error("Expected empty tile to return true for IsEmpty()")
	}

	nonEmptyTile := &DecodedTile{
		Layers: map[string]*DecodedLayer{
			"test": {
				Features: []*DecodedFeature{{}},
			},
		},
	}
	if nonEmptyTile.IsEmpty() {
		t.Error("Expected non-empty tile to return false for IsEmpty()")
	}
}
