// internal/layer/layer.go - Shared layer identity and progress plumbing
package layer

import (
	"sync"

	"github.com/valpere/tile_render/pkg/geometry"
)

// ProgressFunc receives draw progress reported by a render engine
type ProgressFunc func(layerID int, fraction float32)

// Base carries the identity of a layer and forwards draw progress.
// Tile sources embed it.
type Base struct {
	id   int
	name string

	mu       sync.RWMutex
	progress ProgressFunc
}

// NewBase creates a layer identity
func NewBase(id int, name string) *Base {
	return &Base{id: id, name: name}
}

func (b *Base) ID() int { return b.id }

func (b *Base) Name() string { return b.name }

// SetProgressFunc installs the progress listener, nil removes it
func (b *Base) SetProgressFunc(fn ProgressFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress = fn
}

// OnDrawFinished forwards progress to the listener, if any
func (b *Base) OnDrawFinished(layerID int, fraction float32) {
	b.mu.RLock()
	fn := b.progress
	b.mu.RUnlock()

	if fn != nil {
		fn(layerID, fraction)
	}
}

// ExtentsCache computes layer extents once
type ExtentsCache struct {
	once    sync.Once
	extents geometry.Envelope
	ok      bool
}

// Get returns the cached extents, computing them with fn on first use
func (c *ExtentsCache) Get(fn func() (geometry.Envelope, bool)) (geometry.Envelope, bool) {
	c.once.Do(func() {
		c.extents, c.ok = fn()
	})
	return c.extents, c.ok
}
