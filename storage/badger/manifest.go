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
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/storage"
)

// ManifestRepository implements storage.ManifestRepository for BadgerDB.
type ManifestRepository struct {
	backend *Backend
}

var _ storage.ManifestRepository = (*ManifestRepository)(nil)

func newManifestRepository(backend *Backend) *ManifestRepository {
	return &ManifestRepository{
		backend: backend,
	}
}

// SaveManifest persists the manifest, stamping BuiltAt if unset.
func (r *ManifestRepository) SaveManifest(ctx context.Context, manifest *core.IndexManifest) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		if manifest.BuiltAt.IsZero() {
			manifest.BuiltAt = time.Now().UTC()
		}
		if err := tx.Set([]byte(manifestKey), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadManifest retrieves the stored manifest.
func (r *ManifestRepository) LoadManifest(ctx context.Context) (*core.IndexManifest, error) {
	var manifest *core.IndexManifest
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(manifestKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			manifest, unmarshalErr = storage.UnmarshalManifest(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}
