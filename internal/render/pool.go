// internal/render/pool.go - Session worker pool
package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/atomic"

	"github.com/valpere/tile_render/internal/tile"
)

var errPoolShutdown = errors.New("worker pool is shut down")

type taskFunc func(ctx context.Context) TaskResult

// future is the handle of one submitted tile task
type future struct {
	item   tile.Item
	task   taskFunc
	done   chan struct{}
	result TaskResult
}

func newFuture(item tile.Item, task taskFunc) *future {
	return &future{item: item, task: task, done: make(chan struct{})}
}

// run executes the task, turning panics into failures
func (f *future) run(ctx context.Context) {
	if ctx.Err() != nil {
		f.complete(TaskResult{Tile: f.item, Cancelled: true})
		return
	}

	var result TaskResult
	var catcher panics.Catcher
	catcher.Try(func() { result = f.task(ctx) })
	if recovered := catcher.Recovered(); recovered != nil {
		result = TaskResult{Tile: f.item, Err: recovered.AsError()}
	}
	f.complete(result)
}

func (f *future) complete(result TaskResult) {
	f.result = result
	close(f.done)
}

// wait blocks until the task finished or ctx is done
func (f *future) wait(ctx context.Context) (TaskResult, bool) {
	select {
	case <-f.done:
		return f.result, true
	case <-ctx.Done():
		return TaskResult{}, false
	}
}

// poll returns the result if the task already finished
func (f *future) poll() (TaskResult, bool) {
	select {
	case <-f.done:
		return f.result, true
	default:
		return TaskResult{}, false
	}
}

// workerPool runs tile tasks on a fixed number of goroutines. The pending
// queue is unbounded so submissions are never rejected while the pool runs.
type workerPool struct {
	workers int

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*future
	closed bool

	wg         sync.WaitGroup
	terminated chan struct{}
	running    *atomic.Bool
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		workers:    workers,
		ctx:        ctx,
		cancel:     cancel,
		terminated: make(chan struct{}),
		running:    atomic.NewBool(true),
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.terminated)
	}()

	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		f := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		f.run(p.ctx)
	}
}

// submit queues a task for item
func (p *workerPool) submit(item tile.Item, task taskFunc) (*future, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errPoolShutdown
	}
	f := newFuture(item, task)
	p.queue = append(p.queue, f)
	p.cond.Signal()
	return f, nil
}

// shutdown stops accepting tasks and lets the queued ones finish
func (p *workerPool) shutdown() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.running.Store(false)
}

// shutdownNow interrupts running tasks and completes the queued ones as
// cancelled. It returns the number of tasks that never started.
func (p *workerPool) shutdownNow() int {
	p.mu.Lock()
	p.closed = true
	dropped := p.queue
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	p.running.Store(false)
	p.cancel()
	for _, f := range dropped {
		f.complete(TaskResult{Tile: f.item, Cancelled: true})
	}
	return len(dropped)
}

// awaitTermination waits up to timeout for all workers to exit
func (p *workerPool) awaitTermination(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.terminated:
		return true
	case <-timer.C:
		return false
	}
}
