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


// Package storage provides the storage abstraction layer for pathway.
//
// The ranking engine itself never touches storage: it works on an
// in-memory index. This package persists what the index is built from so
// that a process can rebuild it at startup without re-reading the source
// catalog or re-embedding unchanged texts.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep consumers away from
// BadgerDB specifics:
//
//	store, err := badger.Open(path)  // returns storage.Store
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Architecture
//
//   - CatalogRepository: catalog items in load order
//   - EmbeddingCache: vectors keyed by (model, content hash)
//   - ManifestRepository: description of the last index build
//   - Store: all of the above over one backend
//
// # Usage
//
//	store, err := badger.Open("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Serialization
//
// Values are encoded with mus-go. Records carry no schema version; a
// format change requires re-importing the catalog.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
