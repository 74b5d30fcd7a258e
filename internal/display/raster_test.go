// internal/display/raster_test.go - Unit tests for the raster display
package display

import (
	"bytes"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

var red = color.NRGBA{R: 255, A: 255}

func TestNewRasterValidation(t *testing.T) {
	_, err := NewRaster(0, 10, geometry.NewEnvelope(0, 0, 1, 1))
	require.Error(t, err)

	_, err = NewRaster(10, 10, geometry.EmptyEnvelope())
	require.Error(t, err)

	_, err = NewRaster(10, 10, geometry.NewEnvelope(0, 0, 0, 1))
	require.Error(t, err)
}

func TestRasterZoomLevel(t *testing.T) {
	// a quarter of the world across 256 pixels
	bounds := geometry.NewEnvelope(0, 0, tile.WebMercatorMax/2, tile.WebMercatorMax/2)
	r, err := NewRaster(256, 256, bounds)
	require.NoError(t, err)
	require.InDelta(t, 2.0, r.ZoomLevel(), 1e-9)
	require.Equal(t, bounds, r.Bounds())

	fixed, err := NewRaster(256, 256, bounds, WithZoom(7.5))
	require.NoError(t, err)
	require.Equal(t, 7.5, fixed.ZoomLevel())
}

func TestRasterToPixel(t *testing.T) {
	r, err := NewRaster(100, 50, geometry.NewEnvelope(0, 0, 1000, 500))
	require.NoError(t, err)

	x, y := r.ToPixel(geometry.XY(0, 500))
	require.Equal(t, 0.0, x)
	require.Equal(t, 0.0, y)

	x, y = r.ToPixel(geometry.XY(500, 250))
	require.Equal(t, 50.0, x)
	require.Equal(t, 25.0, y)
}

func TestRasterFillPolygon(t *testing.T) {
	r, err := NewRaster(64, 64, geometry.NewEnvelope(0, 0, 64, 64), WithBackground(color.White))
	require.NoError(t, err)

	ring := []geometry.Coordinate{
		geometry.XY(8, 8), geometry.XY(56, 8), geometry.XY(56, 56), geometry.XY(8, 56), geometry.XY(8, 8),
	}
	require.NoError(t, r.FillPolygon([][]geometry.Coordinate{ring}, red))

	img := r.Image()
	rr, g, b, _ := img.At(32, 32).RGBA()
	require.Equal(t, uint32(0xffff), rr)
	require.Equal(t, uint32(0), g)
	require.Equal(t, uint32(0), b)

	rr, g, b, _ = img.At(2, 2).RGBA()
	require.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{rr, g, b})
}

func TestRasterConcurrentDrawing(t *testing.T) {
	r, err := NewRaster(128, 128, geometry.NewEnvelope(0, 0, 128, 128))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			at := geometry.XY(float64(i*8+4), 64)
			errs <- r.DrawMarker(at, Marker{Shape: MarkerShape(i % 4), Size: 6, Fill: red, Outline: color.Black, OutlineWidth: 1})
			errs <- r.StrokeLine([]geometry.Coordinate{geometry.XY(0, float64(i*8)), geometry.XY(128, float64(i*8))}, false, Stroke{Color: red, Width: 1, Dash: []float64{2, 2}})
			errs <- r.DrawText(at, "label", Label{Color: color.Black, Size: 10})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 128, img.Bounds().Dx())
	require.NoError(t, r.Close())
}
