// internal/mapview/map.go - Drawing several layers onto one display
package mapview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/valpere/tile_render/internal/display"
	"github.com/valpere/tile_render/internal/render"
	"github.com/valpere/tile_render/internal/style"
)

type entry struct {
	layer  Layer
	engine *render.Engine
}

// Map is an ordered stack of layers, each drawn by its own engine
type Map struct {
	mu       sync.RWMutex
	entries  []*entry
	reporter ProgressReporter
	logger   logrus.FieldLogger
	options  []render.Option

	progressMu sync.Mutex
	fractions  map[int]float32
}

// NewMap creates a map. opts are applied to the engine of every layer.
func NewMap(reporter ProgressReporter, logger logrus.FieldLogger, opts ...render.Option) *Map {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Map{
		reporter:  reporter,
		logger:    logger,
		options:   append([]render.Option{render.WithLogger(logger)}, opts...),
		fractions: map[int]float32{},
	}
}

// AddLayer appends l drawn with s and returns its engine
func (m *Map) AddLayer(l Layer, s style.Style, opts ...render.Option) (*render.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.layer.ID() == l.ID() {
			return nil, fmt.Errorf("layer %d already added", l.ID())
		}
	}

	engine := render.NewEngine(l, append(append([]render.Option(nil), m.options...), opts...)...)
	engine.SetStyle(s)
	l.SetProgressFunc(m.layerProgress)

	m.entries = append(m.entries, &entry{layer: l, engine: engine})
	return engine, nil
}

// Engines returns the engines in layer order
func (m *Map) Engines() []*render.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()

	engines := make([]*render.Engine, len(m.entries))
	for i, e := range m.entries {
		engines[i] = e.engine
	}
	return engines
}

// Draw runs the engines of all layers concurrently and waits for them
func (m *Map) Draw(ctx context.Context, d display.Display) *DrawResult {
	m.mu.RLock()
	entries := append([]*entry(nil), m.entries...)
	m.mu.RUnlock()

	m.progressMu.Lock()
	m.fractions = make(map[int]float32, len(entries))
	m.progressMu.Unlock()

	start := time.Now()
	reports := make([]LayerReport, len(entries))

	var wg conc.WaitGroup
	for i, e := range entries {
		wg.Go(func() {
			reports[i] = LayerReport{
				LayerID: e.layer.ID(),
				Name:    e.layer.Name(),
				Report:  e.engine.RunDraw(ctx, d),
			}
		})
	}
	wg.Wait()

	result := &DrawResult{Layers: reports, Duration: time.Since(start)}
	for _, r := range reports {
		if r.Err != nil {
			result.Err = multierr.Append(result.Err, fmt.Errorf("layer %s: %w", r.Name, r.Err))
		}
	}

	m.logger.WithFields(logrus.Fields{
		"layers":   len(reports),
		"drawn":    result.Drawn(),
		"failed":   result.Failed(),
		"duration": result.Duration,
	}).Info("Map drawn")

	if m.reporter != nil {
		m.reporter.ReportDrawComplete(result)
	}
	return result
}

// CancelDraw cancels the sessions of all layers
func (m *Map) CancelDraw() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		e.engine.CancelDraw()
	}
}

func (m *Map) layerProgress(layerID int, fraction float32) {
	if m.reporter == nil {
		return
	}

	m.mu.RLock()
	n := len(m.entries)
	m.mu.RUnlock()

	m.progressMu.Lock()
	defer m.progressMu.Unlock()

	if fraction < m.fractions[layerID] {
		return
	}
	m.fractions[layerID] = fraction

	var sum float32
	for _, f := range m.fractions {
		sum += f
	}
	m.reporter.ReportProgress(sum / float32(n))
}
