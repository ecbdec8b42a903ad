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

// Package pathway recommends academic programs by combining semantic
// similarity, BM25 keyword relevance, grade fit and program economics.
//
// Engine is the top-level entry point. It owns the catalog store, the
// embedder and the current in-memory index:
//
//	engine, err := pathway.Open("pathway.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	err = engine.Import(ctx, items)
//	_, err = engine.Reindex(ctx)
//	recs, err := engine.Recommend(ctx, profile, recommend.WithTopN(5))
//
// Recommendations always rank the catalog as of the last Reindex. Importing
// new items does not change results until the index is rebuilt.
package pathway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/ai/openai"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
	"github.com/poiesic/pathway/recommend"
	"github.com/poiesic/pathway/storage"
	"github.com/poiesic/pathway/storage/badger"
)

var (
	// ErrNotIndexed is returned by Recommend before the first successful Reindex.
	ErrNotIndexed = errors.New("catalog has not been indexed")

	ErrEngineClosed = errors.New("engine is closed")
)

type Engine struct {
	store     storage.Store
	embedder  ai.Embedder
	model     string
	indexOpts []index.Option
	recOpts   []recommend.Option
	current   atomic.Pointer[recommend.Recommender]
	reindexMu sync.Mutex
	closed    atomic.Bool
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	model     string
	inMemory  bool
	indexOpts []index.Option
	recOpts   []recommend.Option
	logger    *slog.Logger
}

// WithAIConfig configures the OpenAI-compatible embedder created by Open.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder uses embedder instead of creating one. model names the
// embedding space for the cache and manifest.
func WithEmbedder(embedder ai.Embedder, model string) Option {
	return func(o *engineOptions) {
		o.embedder = embedder
		o.model = model
	}
}

// WithInMemory keeps all state in memory and ignores the path.
func WithInMemory() Option {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithIndexOptions adds options to every Reindex.
func WithIndexOptions(opts ...index.Option) Option {
	return func(o *engineOptions) {
		o.indexOpts = append(o.indexOpts, opts...)
	}
}

// WithRecommenderOptions configures the recommender built by each Reindex.
func WithRecommenderOptions(opts ...recommend.Option) Option {
	return func(o *engineOptions) {
		o.recOpts = append(o.recOpts, opts...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Open opens the catalog store at path and prepares an embedder.
func Open(path string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	embedder := options.embedder
	model := options.model
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		model = options.aiConfig.EmbeddingModel
	}
	if model == "" {
		return nil, fmt.Errorf("%w: embedding model name is required", storage.ErrInvalidModel)
	}

	var (
		store storage.Store
		err   error
	)
	if options.inMemory {
		store, err = badger.NewMemoryStore()
	} else {
		store, err = badger.Open(path, options.logger)
	}
	if err != nil {
		return nil, err
	}

	return &Engine{
		store:     store,
		embedder:  embedder,
		model:     model,
		indexOpts: options.indexOpts,
		recOpts:   options.recOpts,
		logger:    options.logger.With("component", "engine"),
	}, nil
}

// Close releases the store. It is safe to call more than once.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.current.Store(nil)
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing catalog store", "err", err)
		return err
	}
	return nil
}

func (e *Engine) checkOpen() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return nil
}

// Store exposes the underlying catalog store.
func (e *Engine) Store() storage.Store {
	return e.store
}

// Model returns the embedding model name used for caching.
func (e *Engine) Model() string {
	return e.model
}

// Import validates items and upserts them into the catalog. Items already
// stored keep their catalog position.
func (e *Engine) Import(ctx context.Context, items []core.CatalogItem) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := core.ValidateCatalog(items); err != nil {
		return err
	}
	ptrs := make([]*core.CatalogItem, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	if err := e.store.PutItems(ctx, ptrs...); err != nil {
		return fmt.Errorf("storing %d catalog items: %w", len(items), err)
	}
	e.logger.Info("catalog items imported", "count", len(items))
	return nil
}

// Replace makes items the entire catalog, in the given order.
func (e *Engine) Replace(ctx context.Context, items []core.CatalogItem) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if err := core.ValidateCatalog(items); err != nil {
		return err
	}
	ptrs := make([]*core.CatalogItem, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	if err := e.store.ReplaceItems(ctx, ptrs...); err != nil {
		return fmt.Errorf("replacing catalog with %d items: %w", len(items), err)
	}
	e.logger.Info("catalog replaced", "count", len(items))
	return nil
}

// Catalog returns the stored catalog in order.
func (e *Engine) Catalog(ctx context.Context) ([]core.CatalogItem, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	stored, err := e.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]core.CatalogItem, len(stored))
	for i, item := range stored {
		items[i] = *item
	}
	return items, nil
}

// Reindex builds a new index over the stored catalog and makes it current.
// Embeddings are read from and written to the store's cache, so rebuilding
// an unchanged catalog does not call the embedder. On failure the previous
// index stays current.
func (e *Engine) Reindex(ctx context.Context, opts ...index.Option) (*core.IndexManifest, error) {
	e.reindexMu.Lock()
	defer e.reindexMu.Unlock()

	items, err := e.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	buildOpts := make([]index.Option, 0, len(e.indexOpts)+len(opts)+2)
	buildOpts = append(buildOpts, index.WithLogger(e.logger), index.WithCache(e.store, e.model))
	buildOpts = append(buildOpts, e.indexOpts...)
	buildOpts = append(buildOpts, opts...)

	idx, err := index.Build(ctx, items, e.embedder, buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("building catalog index: %w", err)
	}

	recOpts := append([]recommend.Option{recommend.WithLogger(e.logger)}, e.recOpts...)
	r, err := recommend.NewRecommender(idx, e.embedder, recOpts...)
	if err != nil {
		return nil, err
	}

	manifest := idx.Manifest(e.model)
	if err := e.store.SaveManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("saving index manifest: %w", err)
	}
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	e.current.Store(r)
	return manifest, nil
}

// Manifest returns the manifest of the last successful Reindex, which may
// predate this Engine.
func (e *Engine) Manifest(ctx context.Context) (*core.IndexManifest, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	return e.store.LoadManifest(ctx)
}

// Stale reports whether the stored catalog differs from the current index.
// It returns true when nothing is indexed yet.
func (e *Engine) Stale(ctx context.Context) (bool, error) {
	items, err := e.Catalog(ctx)
	if err != nil {
		return false, err
	}
	r := e.current.Load()
	if r == nil {
		return true, nil
	}
	return index.Fingerprint(items) != r.Index().Fingerprint(), nil
}

// Recommender returns the current recommender.
func (e *Engine) Recommender() (*recommend.Recommender, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	r := e.current.Load()
	if r == nil {
		return nil, ErrNotIndexed
	}
	return r, nil
}

// Recommend ranks the indexed catalog for profile.
func (e *Engine) Recommend(ctx context.Context, profile *core.UserProfile, opts ...recommend.RequestOption) ([]core.Recommendation, error) {
	r, err := e.Recommender()
	if err != nil {
		return nil, err
	}
	return r.Recommend(ctx, profile, opts...)
}

// Score is Recommend with every score component kept.
func (e *Engine) Score(ctx context.Context, profile *core.UserProfile, opts ...recommend.RequestOption) ([]core.ScoredCandidate, error) {
	r, err := e.Recommender()
	if err != nil {
		return nil, err
	}
	return r.Score(ctx, profile, opts...)
}
