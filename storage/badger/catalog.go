// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
//
// Items live under an order key derived from a sequence number, so a
// prefix scan returns them in load order. A second key maps the item ID to
// its sequence number.
type CatalogRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// newCatalogRepository creates a new CatalogRepository.
func newCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	seq, err := backend.GetSequence(catalogSeq)
	if err != nil {
		return nil, err
	}
	return &CatalogRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the order sequence.
func (r *CatalogRepository) Close() error {
	return r.seq.Release()
}

// PutItems stores items in argument order.
func (r *CatalogRepository) PutItems(ctx context.Context, items ...*core.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, item := range items {
			if err := r.putItem(tx, item); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ReplaceItems swaps the whole catalog for items in one transaction.
func (r *CatalogRepository) ReplaceItems(ctx context.Context, items ...*core.CatalogItem) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		var keys [][]byte
		for _, prefix := range []string{catalogOrderPrefix, catalogIDPrefix} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()
		}
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for _, item := range items {
			if err := r.putItem(tx, item); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// putItem writes item at its existing position, or appends it.
func (r *CatalogRepository) putItem(tx *badger.Txn, item *core.CatalogItem) error {
	if item.ID == "" {
		return core.ErrEmptyItemID
	}

	seq, found, err := lookupSeq(tx, item.ID)
	if err != nil {
		return err
	}
	if !found {
		seq, err = nextNonZero(r.seq)
		if err != nil {
			return err
		}
		if err := tx.Set(makeCatalogIDKey(item.ID), encodeSeq(seq)); err != nil {
			return err
		}
	}
	return tx.Set(makeCatalogOrderKey(seq), storage.MarshalCatalogItem(item))
}

// GetItem retrieves a single item by ID.
func (r *CatalogRepository) GetItem(ctx context.Context, id string) (*core.CatalogItem, error) {
	var item *core.CatalogItem
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		seq, found, err := lookupSeq(tx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: catalog item %q", storage.ErrNotFound, id)
		}
		entry, err := tx.Get(makeCatalogOrderKey(seq))
		if err != nil {
			return err
		}
		return entry.Value(func(val []byte) error {
			var unmarshalErr error
			item, unmarshalErr = storage.UnmarshalCatalogItem(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns every item in catalog order.
func (r *CatalogRepository) ListItems(ctx context.Context) ([]*core.CatalogItem, error) {
	var items []*core.CatalogItem
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogOrderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				item, err := storage.UnmarshalCatalogItem(val)
				if err != nil {
					return err
				}
				items = append(items, item)
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
	return items, nil
}

// DeleteItems removes items by ID.
func (r *CatalogRepository) DeleteItems(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			seq, found, err := lookupSeq(tx, id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: catalog item %q", storage.ErrNotFound, id)
			}
			if err := tx.Delete(makeCatalogOrderKey(seq)); err != nil {
				return err
			}
			if err := tx.Delete(makeCatalogIDKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Count returns the number of stored items.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogIDPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// lookupSeq returns the order sequence of an item ID.
func lookupSeq(tx *badger.Txn, id string) (uint64, bool, error) {
	entry, err := tx.Get(makeCatalogIDKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	var seq uint64
	err = entry.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: catalog index entry for %q", storage.ErrTruncatedData, id)
		}
		seq = decodeSeq(val)
		return nil
	})
	return seq, err == nil, err
}
