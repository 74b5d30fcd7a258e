// internal/mapview/map_test.go - Unit tests for map drawing
package mapview

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valpere/tile_render/internal/display"
	"github.com/valpere/tile_render/internal/layer"
	"github.com/valpere/tile_render/internal/render"
	"github.com/valpere/tile_render/internal/style"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

type pointLayer struct {
	*layer.Base
	fail error
}

func (l *pointLayer) Extents() (geometry.Envelope, bool) { return tile.World(), true }

func (l *pointLayer) Tile(_ context.Context, item tile.Item) (*tile.VectorTile, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	c := item.Envelope().Center()
	return &tile.VectorTile{Item: item, Features: []tile.Feature{{ID: 1, Geometry: geometry.NewPoint(c.X, c.Y)}}}, nil
}

type nullDisplay struct{}

func (nullDisplay) ZoomLevel() float64                                           { return 2 }
func (nullDisplay) Bounds() geometry.Envelope                                    { return tile.World() }
func (nullDisplay) FillPolygon([][]geometry.Coordinate, color.Color) error       { return nil }
func (nullDisplay) StrokeLine([]geometry.Coordinate, bool, display.Stroke) error { return nil }
func (nullDisplay) DrawMarker(geometry.Coordinate, display.Marker) error         { return nil }
func (nullDisplay) DrawText(geometry.Coordinate, string, display.Label) error    { return nil }

type recordingReporter struct {
	mu        sync.Mutex
	fractions []float32
	completed []*DrawResult
}

func (r *recordingReporter) ReportProgress(fraction float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fractions = append(r.fractions, fraction)
}

func (r *recordingReporter) ReportDrawComplete(result *DrawResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, result)
}

func marker() style.Style {
	return style.NewSimpleMarkerStyle(style.MustColor("#ff0000"), style.MustColor("#000000"), 3)
}

func TestMapDraw(t *testing.T) {
	reporter := &recordingReporter{}
	m := NewMap(reporter, nil, render.WithThreads(2))

	boom := errors.New("boom")
	_, err := m.AddLayer(&pointLayer{Base: layer.NewBase(1, "points")}, marker())
	require.NoError(t, err)
	_, err = m.AddLayer(&pointLayer{Base: layer.NewBase(2, "broken"), fail: boom}, marker())
	require.NoError(t, err)
	require.Len(t, m.Engines(), 2)

	result := m.Draw(context.Background(), nullDisplay{})

	require.Len(t, result.Layers, 2)
	require.Equal(t, "points", result.Layers[0].Name)
	require.Equal(t, "broken", result.Layers[1].Name)
	require.Equal(t, 16, result.Drawn())
	require.Equal(t, 16, result.Failed())
	require.ErrorIs(t, result.Err, boom)

	require.Len(t, reporter.completed, 1)
	require.NotEmpty(t, reporter.fractions)
	for i := 1; i < len(reporter.fractions); i++ {
		require.GreaterOrEqual(t, reporter.fractions[i], reporter.fractions[i-1])
	}
	require.Equal(t, float32(1), reporter.fractions[len(reporter.fractions)-1])
}

func TestMapAddLayerRejectsDuplicates(t *testing.T) {
	m := NewMap(nil, nil)
	_, err := m.AddLayer(&pointLayer{Base: layer.NewBase(1, "a")}, marker())
	require.NoError(t, err)
	_, err = m.AddLayer(&pointLayer{Base: layer.NewBase(1, "b")}, marker())
	require.Error(t, err)

	// Nothing running
	m.CancelDraw()
}
