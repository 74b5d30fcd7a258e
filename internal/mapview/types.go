// internal/mapview/types.go - Map drawing types
package mapview

import (
	"time"

	"github.com/valpere/tile_render/internal/layer"
	"github.com/valpere/tile_render/internal/render"
)

// Layer is a drawable layer whose progress the map can observe
type Layer interface {
	render.Layer
	SetProgressFunc(fn layer.ProgressFunc)
}

// ProgressReporter receives the progress of a map draw
type ProgressReporter interface {
	// ReportProgress is called with the mean progress over all layers
	ReportProgress(fraction float32)
	ReportDrawComplete(result *DrawResult)
}

// LayerReport is the outcome of drawing one layer
type LayerReport struct {
	LayerID int
	Name    string
	render.Report
}

// DrawResult summarizes one Map.Draw call, reports in layer order
type DrawResult struct {
	Layers   []LayerReport
	Duration time.Duration
	// Err aggregates the failures of every layer
	Err error
}

// Drawn returns the number of tiles drawn over all layers
func (r *DrawResult) Drawn() int {
	n := 0
	for _, l := range r.Layers {
		n += l.Drawn
	}
	return n
}

// Failed returns the number of failed tiles over all layers
func (r *DrawResult) Failed() int {
	n := 0
	for _, l := range r.Layers {
		n += l.Failed
	}
	return n
}
