// internal/layer/bolt/storage.go - bbolt tile storage
package bolt

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/valpere/tile_render/internal"
	"github.com/valpere/tile_render/internal/tile"
	"github.com/valpere/tile_render/pkg/geometry"
)

var (
	tilesBucket = []byte("tiles")
	infoBucket  = []byte("info")
	infoKey     = []byte("infos")
)

// Infos describes the tiles held by a storage
type Infos struct {
	Name       string
	Scheme     string
	Extents    geometry.Envelope
	TileCount  int
	ImportTime int64
}

// Storage keeps raw tile payloads keyed by z/x/y
type Storage struct {
	*bbolt.DB
	logger logrus.FieldLogger
}

// NewStorage opens or creates a storage at path
func NewStorage(path string, logger logrus.FieldLogger) (*Storage, func() error, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, nil, internal.NewError(internal.ErrorCodeStorage, "failed to open DB at "+path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(tilesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(infoBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, nil, internal.NewError(internal.ErrorCodeStorage, "failed to create buckets", err)
	}

	return &Storage{DB: db, logger: logger}, db.Close, nil
}

// NewROStorage opens an existing storage for reading
func NewROStorage(path string, logger logrus.FieldLogger) (*Storage, func() error, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, nil, internal.NewError(internal.ErrorCodeStorage, fmt.Sprintf("failed to open DB for reading at %s", path), err)
	}

	return &Storage{DB: db, logger: logger}, db.Close, nil
}

// TileKey is the storage key of an item, y counted in the item scheme
func TileKey(item tile.Item) []byte {
	return []byte(fmt.Sprintf("%d/%d/%d", item.Zoom, item.X, item.Y))
}

// ReadTileData returns the payload of a tile, nil when absent
func (s *Storage) ReadTileData(item tile.Item) ([]byte, error) {
	var v []byte
	err := s.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(tilesBucket)
		if b == nil {
			return internal.NewError(internal.ErrorCodeStorage, "missing tiles bucket, invalid DB", nil)
		}
		if data := b.Get(TileKey(item)); data != nil {
			// bbolt values are only valid inside the transaction
			v = append([]byte(nil), data...)
		}
		return nil
	})
	return v, err
}

// WriteTiles stores payloads in one transaction
func (s *Storage) WriteTiles(items []tile.Item, payloads [][]byte) error {
	if len(items) != len(payloads) {
		return fmt.Errorf("got %d payloads for %d tiles", len(payloads), len(items))
	}

	return s.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(tilesBucket)
		for i, item := range items {
			if err := b.Put(TileKey(item), payloads[i]); err != nil {
				return fmt.Errorf("failed writing tile %s: %w", item, err)
			}
		}
		return nil
	})
}

// SaveInfos writes the storage description
func (s *Storage) SaveInfos(infos *Infos) error {
	buf := new(bytes.Buffer)
	enc := cbor.NewEncoder(buf, cbor.CanonicalEncOptions())
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("failed encoding infos: %w", err)
	}

	return s.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(infoBucket).Put(infoKey, buf.Bytes())
	})
}

// LoadInfos reads the storage description, false when none was saved
func (s *Storage) LoadInfos() (*Infos, bool, error) {
	var infos *Infos
	err := s.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(infoBucket)
		if b == nil {
			return nil
		}
		value := b.Get(infoKey)
		if value == nil {
			return nil
		}
		infos = &Infos{}
		dec := cbor.NewDecoder(bytes.NewReader(value))
		return dec.Decode(infos)
	})
	if err != nil {
		return nil, false, err
	}

	if infos == nil {
		return nil, false, nil
	}
	return infos, true, nil
}
