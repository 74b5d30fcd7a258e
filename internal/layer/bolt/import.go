// internal/layer/bolt/import.go - Importing a tile directory into a storage
package bolt

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/tile_render/internal/layer/local"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

const importBatchSize = 256

type payload struct {
	item tile.Item
	data []byte
}

// ImportOptions tunes Import
type ImportOptions struct {
	Readers  int
	Progress func(done, total int)
}

// Import copies every tile of src into s and records the infos. Readers load
// files concurrently while a single writer batches them into transactions.
func (s *Storage) Import(ctx context.Context, src *local.Layer, opts ImportOptions) (*Infos, error) {
	items, err := src.ListAvailableTiles()
	if err != nil {
		return nil, err
	}
	if opts.Readers <= 0 {
		opts.Readers = 4
	}

	log := s.logger.WithFields(logrus.Fields{"layer": src.Name(), "tiles": len(items)})
	log.Info("Importing tiles")

	g, ctx := errgroup.WithContext(ctx)
	todo := make(chan tile.Item)
	loaded := make(chan payload, importBatchSize)

	g.Go(func() error {
		defer close(todo)
		for _, item := range items {
			select {
			case todo <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	readers, rctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.Readers; i++ {
		readers.Go(func() error {
			for item := range todo {
				data, err := src.Read(item)
				if err != nil {
					return err
				}
				select {
				case loaded <- payload{item: item, data: data}:
				case <-rctx.Done():
					return rctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(loaded)
		return readers.Wait()
	})

	extents := geometry.EmptyEnvelope()
	g.Go(func() error {
		batch := make([]tile.Item, 0, importBatchSize)
		data := make([][]byte, 0, importBatchSize)
		done := 0

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := s.WriteTiles(batch, data); err != nil {
				return err
			}
			done += len(batch)
			if opts.Progress != nil {
				opts.Progress(done, len(items))
			}
			batch, data = batch[:0], data[:0]
			return nil
		}

		for p := range loaded {
			extents = extents.Extend(p.item.Envelope())
			batch = append(batch, p.item)
			data = append(data, p.data)
			if len(batch) == importBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Import failed")
		return nil, err
	}

	infos := &Infos{
		Name:       src.Name(),
		Scheme:     src.Scheme().String(),
		Extents:    extents,
		TileCount:  len(items),
		ImportTime: time.Now().Unix(),
	}
	if err := s.SaveInfos(infos); err != nil {
		return nil, err
	}

	log.WithField("extents", extents.String()).Info("Import finished")
	return infos, nil
}
