// internal/source/factory.go - Layer factory implementation
package source

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/valpere/tile_render/internal"
	"github.com/valpere/tile_render/internal/config"
	"github.com/valpere/tile_render/internal/layer"
	"github.com/valpere/tile_render/internal/layer/bolt"
	"github.com/valpere/tile_render/internal/layer/local"
	"github.com/valpere/tile_render/internal/render"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/mvt"
)

// Source is a layer the engine can draw whose progress can be observed
type Source interface {
	render.Layer
	SetProgressFunc(fn layer.ProgressFunc)
	Scheme() tile.Scheme
}

// LayerFactory creates layers based on configuration
type LayerFactory struct {
	config *config.Config
	logger logrus.FieldLogger
}

// NewLayerFactory creates a new layer factory
func NewLayerFactory(cfg *config.Config, logger logrus.FieldLogger) *LayerFactory {
	return &LayerFactory{
		config: cfg,
		logger: logger,
	}
}

// Processor builds the tile processor, honouring the layer filter
func (f *LayerFactory) Processor() (*tile.Processor, error) {
	opts := mvt.DefaultOptions()
	opts.LayerFilter = f.config.Source.Layers

	decoder, err := mvt.NewDecoderWithOptions(opts)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeConfig, "invalid decoder options", err)
	}
	return tile.NewProcessor(decoder), nil
}

// CreateLayer creates the configured layer. The returned func releases it.
func (f *LayerFactory) CreateLayer(id int) (Source, func() error, error) {
	processor, err := f.Processor()
	if err != nil {
		return nil, nil, err
	}

	sourceType := f.config.DetermineSourceType()
	f.logger.WithField("type", sourceType).Debug("Creating layer")

	switch sourceType {
	case internal.SourceTypeLocal:
		l, err := local.New(id, f.config, processor)
		if err != nil {
			return nil, nil, err
		}
		return l, func() error { return nil }, nil

	case internal.SourceTypeBolt:
		if f.config.Source.BoltPath == "" {
			return nil, nil, fmt.Errorf("bolt_path is required for bolt source")
		}
		storage, closer, err := bolt.NewROStorage(f.config.Source.BoltPath, f.logger)
		if err != nil {
			return nil, nil, err
		}
		l, err := bolt.NewLayer(id, f.config.Source.Name, storage, processor)
		if err != nil {
			closer()
			return nil, nil, err
		}
		return l, closer, nil

	default:
		return nil, nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}
