// internal/render/metrics.go - Prometheus metrics for render sessions
package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tile_render"

// Metrics counts sessions and tiles. A nil *Metrics records nothing.
type Metrics struct {
	sessions *prometheus.CounterVec
	tiles    *prometheus.CounterVec
	features prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics registers the render metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_total",
			Help:      "Render sessions by final state",
		}, []string{"state"}),
		tiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tiles_total",
			Help:      "Tiles processed by outcome",
		}, []string{"outcome"}),
		features: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "features_drawn_total",
			Help:      "Features drawn",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "session_duration_seconds",
			Help:      "Render session duration",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

func (m *Metrics) observeTask(r TaskResult) {
	if m == nil {
		return
	}
	switch {
	case r.Cancelled:
		m.tiles.WithLabelValues("cancelled").Inc()
	case r.Err != nil:
		m.tiles.WithLabelValues("failed").Inc()
	default:
		m.tiles.WithLabelValues("drawn").Inc()
	}
	m.features.Add(float64(r.Features))
}

func (m *Metrics) observeSession(state State, d time.Duration) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(state.String()).Inc()
	m.duration.Observe(d.Seconds())
}
