// internal/render/session.go - Render session state and results
package render

import (
	"context"
	"sync"
	"time"

	"github.com/teris-io/shortid"
	"go.uber.org/atomic"

	"github.com/valpere/tile_render/internal/tile"
)

// State is the lifecycle position of a render session
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

var stateNames = [...]string{"idle", "running", "completed", "cancelled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// TaskResult is the outcome of drawing one tile
type TaskResult struct {
	Tile      tile.Item
	Features  int
	Err       error
	Cancelled bool
	Duration  time.Duration
}

// Report summarizes one RunDraw call. A draw that had nothing to do is
// reported with StateIdle and no tiles.
type Report struct {
	SessionID string
	State     State
	Zoom      int
	Tiles     int
	Results   []TaskResult
	Drawn     int
	Failed    int
	Cancelled int
	// Err aggregates the task failures, nil when every tile succeeded
	Err      error
	Duration time.Duration
}

// session is one rendering pass. It exclusively owns its worker pool and the
// handles of the tasks submitted to it.
type session struct {
	id      string
	pool    *workerPool
	futures []*future
	state   *atomic.Int32
	started time.Time

	// waitCtx bounds the orchestrator's join on the futures
	waitCtx    context.Context
	cancelWait context.CancelFunc

	cancelOnce sync.Once
	cancelled  *atomic.Bool
}

func newSession(parent context.Context, threads int) *session {
	id, err := shortid.Generate()
	if err != nil {
		id = time.Now().Format("150405.000000")
	}

	waitCtx, cancelWait := context.WithCancel(parent)
	return &session{
		id:         id,
		pool:       newWorkerPool(threads),
		state:      atomic.NewInt32(int32(StateRunning)),
		started:    time.Now(),
		waitCtx:    waitCtx,
		cancelWait: cancelWait,
		cancelled:  atomic.NewBool(false),
	}
}

func (s *session) State() State {
	return State(s.state.Load())
}

// cancel shuts the pool down immediately and waits up to timeout for the
// workers to exit. It reports whether the workers exited in time.
func (s *session) cancel(timeout time.Duration) (dropped int, terminated bool) {
	terminated = true
	s.cancelOnce.Do(func() {
		s.cancelled.Store(true)
		dropped = s.pool.shutdownNow()
		terminated = s.pool.awaitTermination(timeout)
		s.cancelWait()
	})
	return dropped, terminated
}

func (s *session) finish() State {
	final := StateCompleted
	if s.cancelled.Load() {
		final = StateCancelled
	}
	s.state.Store(int32(final))
	s.pool.shutdown()
	s.cancelWait()
	return final
}
