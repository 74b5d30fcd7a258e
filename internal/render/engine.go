// internal/render/engine.go - Tiled concurrent render engine
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/valpere/tile_render/internal/display"
	"github.com/valpere/tile_render/internal/style"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

const (
	DefaultTerminateTimeout = 650 * time.Millisecond
	DefaultNotifySteps      = 10
)

// Layer is the tile source drawn by an engine
type Layer interface {
	ID() int
	Name() string
	// Extents returns the area covered by the layer, false when unknown
	Extents() (geometry.Envelope, bool)
	// Tile returns the features of one tile. A nil tile means no data.
	Tile(ctx context.Context, item tile.Item) (*tile.VectorTile, error)
	// OnDrawFinished receives the session progress in [0, 1]
	OnDrawFinished(layerID int, fraction float32)
}

type options struct {
	threads          int
	terminateTimeout time.Duration
	notifySteps      int
	scheme           tile.Scheme
	logger           logrus.FieldLogger
	resolver         StyleResolver
	metrics          *Metrics
}

// Option configures an Engine
type Option func(*options)

// WithThreads sets the worker count of each session
func WithThreads(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.threads = n
		}
	}
}

// WithTerminateTimeout bounds the wait for workers when a session is cancelled
func WithTerminateTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.terminateTimeout = d
		}
	}
}

// WithNotifySteps sets how many intermediate progress callbacks are made
func WithNotifySteps(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.notifySteps = n
		}
	}
}

// WithScheme sets the tiling scheme used to address layer tiles
func WithScheme(s tile.Scheme) Option {
	return func(o *options) { o.scheme = s }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStyleResolver overrides the per-feature style choice
func WithStyleResolver(r StyleResolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func defaultOptions() options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return options{
		threads:          runtime.NumCPU(),
		terminateTimeout: DefaultTerminateTimeout,
		notifySteps:      DefaultNotifySteps,
		scheme:           tile.SchemeTMS,
		logger:           discard,
		resolver:         BaseStyle,
	}
}

// Engine draws the features of one layer onto a display, fetching and drawing
// the visible tiles concurrently. At most one session runs at a time: a new
// draw cancels the running one before submitting any work.
type Engine struct {
	layer Layer
	index *tile.Index
	opts  options

	styleMu sync.RWMutex
	style   style.Style

	// startMu serializes session hand-over and cancellation
	startMu sync.Mutex
	current atomic.Pointer[session]
}

// NewEngine creates an engine for layer
func NewEngine(layer Layer, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		layer: layer,
		index: tile.NewIndex(o.scheme),
		opts:  o,
	}
}

// Layer returns the drawn layer
func (e *Engine) Layer() Layer { return e.layer }

// SetStyle sets the base style. A nil style disables drawing.
func (e *Engine) SetStyle(s style.Style) {
	e.styleMu.Lock()
	defer e.styleMu.Unlock()
	e.style = s
}

// Style returns the base style
func (e *Engine) Style() style.Style {
	e.styleMu.RLock()
	defer e.styleMu.RUnlock()
	return e.style
}

// Running reports whether a session is in progress
func (e *Engine) Running() bool {
	s := e.current.Load()
	return s != nil && s.State() == StateRunning
}

// RunDraw draws the tiles of the layer visible on d and blocks until every
// submitted tile was joined. Cancellation of ctx, a concurrent RunDraw or
// CancelDraw stops the session early. Task failures are logged and reported
// in the returned Report, never returned as an error.
func (e *Engine) RunDraw(ctx context.Context, d display.Display) Report {
	log := e.opts.logger.WithField("layer", e.layer.Name())

	base := e.Style()
	if base == nil {
		log.Debug("No style set, nothing to draw")
		return Report{State: StateIdle}
	}

	bounds := d.Bounds()
	zoom := tile.SnapZoom(d.ZoomLevel())

	extents, ok := e.layer.Extents()
	if !ok || !extents.Intersects(bounds) {
		log.WithField("bounds", bounds).Debug("Layer not visible")
		return Report{State: StateIdle, Zoom: zoom}
	}

	items := e.index.Cover(bounds, zoom)
	if len(items) == 0 {
		return Report{State: StateIdle, Zoom: zoom}
	}

	s := e.start(ctx, items, base, d)
	log = log.WithField("session", s.id)
	log.WithFields(logrus.Fields{
		"zoom":    zoom,
		"tiles":   len(items),
		"threads": e.opts.threads,
	}).Debug("Render session started")

	report := e.join(s, len(items), log)
	report.Zoom = zoom
	report.Tiles = len(items)

	log.WithFields(logrus.Fields{
		"state":    report.State,
		"drawn":    report.Drawn,
		"failed":   report.Failed,
		"duration": report.Duration,
	}).Info("Render session finished")

	return report
}

// CancelDraw cancels the running session, if any, and waits a bounded time
// for its workers to exit
func (e *Engine) CancelDraw() {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	e.cancelCurrent()
}

// start replaces the running session with a new one and submits items to it
func (e *Engine) start(ctx context.Context, items []tile.Item, base style.Style, d display.Display) *session {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	e.cancelCurrent()

	s := newSession(ctx, e.opts.threads)
	e.current.Store(s)

	for _, item := range items {
		// Stop submitting once the caller gave up
		if ctx.Err() != nil {
			break
		}

		f, err := s.pool.submit(item, func(taskCtx context.Context) TaskResult {
			return e.drawTile(taskCtx, item, base, d)
		})
		if err != nil {
			break
		}
		s.futures = append(s.futures, f)
	}

	return s
}

// cancelCurrent must be called with startMu held
func (e *Engine) cancelCurrent() {
	s := e.current.Swap(nil)
	if s == nil {
		return
	}

	dropped, terminated := s.cancel(e.opts.terminateTimeout)
	log := e.opts.logger.WithFields(logrus.Fields{"layer": e.layer.Name(), "session": s.id})
	if !terminated {
		log.WithField("timeout", e.opts.terminateTimeout).Warn("Render workers did not stop in time")
	}
	log.WithField("dropped", dropped).Debug("Render session cancelled")
}

// join waits on the futures in submission order. total is the size of the
// tile set, which exceeds the futures when submission stopped early.
func (e *Engine) join(s *session, total int, log logrus.FieldLogger) Report {
	layerID := e.layer.ID()
	p := newProgress(total, e.opts.notifySteps, func(fraction float32) {
		e.layer.OnDrawFinished(layerID, fraction)
	})

	report := Report{SessionID: s.id, Results: make([]TaskResult, 0, len(s.futures))}
	var errs error
	aborted := false
	if len(s.futures) < total {
		aborted = true
		e.abort(s)
	}

	for i, f := range s.futures {
		result, ok := f.wait(s.waitCtx)
		if !ok && !aborted {
			aborted = true
			e.abort(s)
		}
		if !ok {
			if result, ok = f.poll(); !ok {
				result = TaskResult{Tile: f.item, Cancelled: true}
			}
		}

		switch {
		case result.Cancelled:
			report.Cancelled++
		case result.Err != nil:
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("tile %s: %w", result.Tile, result.Err))
			log.WithError(result.Err).WithField("tile", result.Tile.String()).Error("Tile render failed")
		default:
			report.Drawn++
		}
		e.opts.metrics.observeTask(result)
		report.Results = append(report.Results, result)

		p.joined(i)
	}
	p.done()

	report.State = s.finish()
	report.Err = errs
	report.Duration = time.Since(s.started)
	e.opts.metrics.observeSession(report.State, report.Duration)

	e.current.CompareAndSwap(s, nil)
	return report
}

// abort cancels s after its caller's context ended
func (e *Engine) abort(s *session) {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	e.current.CompareAndSwap(s, nil)
	s.cancel(e.opts.terminateTimeout)
}

// drawTile is the task run for one tile
func (e *Engine) drawTile(ctx context.Context, item tile.Item, base style.Style, d display.Display) TaskResult {
	started := time.Now()
	result := TaskResult{Tile: item}

	runtime.Gosched()

	vt, err := e.layer.Tile(ctx, item)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			result.Cancelled = true
		} else {
			result.Err = err
		}
		result.Duration = time.Since(started)
		return result
	}
	if vt == nil {
		result.Duration = time.Since(started)
		return result
	}

	for _, feature := range vt.Features {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		if feature.Geometry == nil {
			continue
		}

		s := e.opts.resolver.Resolve(feature.ID, base)
		if s == nil {
			continue
		}
		if err := s.Draw(feature.Geometry, d); err != nil {
			result.Err = fmt.Errorf("feature %d: %w", feature.ID, err)
			break
		}
		result.Features++
	}

	result.Duration = time.Since(started)
	return result
}
