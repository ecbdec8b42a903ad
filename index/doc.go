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


// Package index builds the immutable, in-memory catalog index that every
// recommendation request reads.
//
// A CatalogIndex holds, aligned by catalog position:
//
//   - the program records themselves
//   - the searchable text of each program
//   - a unit-length embedding of that text
//   - a BM25 lexical index over the tokenized texts
//   - the precomputed numeric desirability component
//
// # Building
//
//	idx, err := index.Build(ctx, items, embedder,
//	    index.WithBatchSize(32),
//	    index.WithCache(store, "paraphrase-multilingual-minilm"),
//	    index.WithProgress(os.Stderr),
//	)
//
// Embedding batches run concurrently on an ants pool. Each batch is retried
// with exponential backoff. When a cache is configured, texts whose vectors
// are already cached for the model are not sent to the embedder.
//
// # Lifecycle
//
// An index is built once and never mutated. Rebuilding produces a new
// index; callers swap the reference. Concurrent reads need no locking.
//
// # Tokenization
//
// Both the corpus and queries pass through Tokenize: NFKC normalization,
// lowercasing, whitespace splitting, and trimming of surrounding
// punctuation.
package index
