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
	"errors"
	"log/slog"

	"github.com/poiesic/pathway/storage"
)

// Store implements storage.Store over a single BadgerDB backend.
type Store struct {
	*CatalogRepository
	*EmbeddingCache
	*ManifestRepository

	backend *Backend
}

var _ storage.Store = (*Store)(nil)

// Open opens (or creates) a file-backed store at path.
// A nil logger means slog.Default().
func Open(path string, logger *slog.Logger) (storage.Store, error) {
	return openStore(path, false, logger)
}

// NewMemoryStore creates an in-memory store for testing.
// Caller must close it when done.
func NewMemoryStore() (storage.Store, error) {
	return openStore("", true, nil)
}

func openStore(path string, inMemory bool, logger *slog.Logger) (*Store, error) {
	backend, err := OpenBackend(path, inMemory, logger)
	if err != nil {
		return nil, err
	}

	catalog, err := newCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Store{
		CatalogRepository:  catalog,
		EmbeddingCache:     newEmbeddingCache(backend),
		ManifestRepository: newManifestRepository(backend),
		backend:            backend,
	}, nil
}

// Close releases the repositories and closes the backend.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return nil
	}
	return errors.Join(s.CatalogRepository.Close(), s.backend.Close())
}
