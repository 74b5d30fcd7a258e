// internal/layer/bolt/layer.go - Vector tile layer backed by a bbolt storage
package bolt

import (
	"context"

	"github.com/valpere/tile_render/internal"
	"github.com/valpere/tile_render/internal/layer"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

// Layer serves tiles imported into a Storage
type Layer struct {
	*layer.Base

	storage   *Storage
	scheme    tile.Scheme
	processor *tile.Processor
	extents   geometry.Envelope
	hasInfos  bool
}

// NewLayer creates a layer over storage. The name and extents come from the
// stored infos; name overrides the stored one when not empty.
func NewLayer(id int, name string, storage *Storage, processor *tile.Processor) (*Layer, error) {
	infos, ok, err := storage.LoadInfos()
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeStorage, "failed to load storage infos", err)
	}

	l := &Layer{
		storage:   storage,
		scheme:    tile.SchemeXYZ,
		processor: processor,
		extents:   geometry.EmptyEnvelope(),
	}
	if l.processor == nil {
		l.processor = tile.NewProcessor(nil)
	}

	if ok {
		l.hasInfos = true
		l.extents = infos.Extents
		scheme, err := tile.ParseScheme(infos.Scheme)
		if err != nil {
			return nil, internal.NewError(internal.ErrorCodeStorage, "invalid stored scheme", err)
		}
		l.scheme = scheme
		if name == "" {
			name = infos.Name
		}
	}
	l.Base = layer.NewBase(id, name)

	return l, nil
}

// Scheme returns the row scheme of the stored keys
func (l *Layer) Scheme() tile.Scheme { return l.scheme }

// Extents returns the extents recorded at import
func (l *Layer) Extents() (geometry.Envelope, bool) {
	if !l.hasInfos || !l.extents.IsInit() {
		return geometry.EmptyEnvelope(), false
	}
	return l.extents, true
}

// Tile reads and decodes one tile. A missing key is no data.
func (l *Layer) Tile(ctx context.Context, item tile.Item) (*tile.VectorTile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.storage.ReadTileData(item.In(l.scheme))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	return l.processor.Process(data, item)
}
