package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

func newEmbeddingCache(backend *Backend) *EmbeddingCache {
	return &EmbeddingCache{backend: backend}
}

// GetEmbeddings returns cached vectors for the keys that have one.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, model string, keys ...core.ID) (map[core.ID][]float32, error) {
	if model == "" {
		return nil, storage.ErrInvalidModel
	}
	found := make(map[core.ID][]float32, len(keys))
	err := c.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, key := range keys {
			entry, err := tx.Get(makeEmbeddingKey(model, key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			err = entry.Value(func(val []byte) error {
				vector, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				found[key] = vector
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutEmbeddings stores vectors through a write batch, since a full catalog
// of vectors can exceed the size limit of a single transaction.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, model string, vectors map[core.ID][]float32) error {
	if model == "" {
		return storage.ErrInvalidModel
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	wb := c.backend.NewWriteBatch()
	defer wb.Cancel()

	for key, vector := range vectors {
		if err := wb.Set(makeEmbeddingKey(model, key), storage.MarshalVector(vector)); err != nil {
			return err
		}
	}
	return wb.Flush()
}
