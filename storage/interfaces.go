package storage

import (
	"context"

	"github.com/poiesic/pathway/core"
)

// CatalogRepository persists catalog items in load order.
// Implementations must be thread-safe and support concurrent access.
type CatalogRepository interface {
	// PutItems stores items, keyed by CatalogItem.ID.
	// New items are appended after every stored item, in argument order.
	// An item whose ID is already stored is replaced in place and keeps its position.
	PutItems(ctx context.Context, items ...*core.CatalogItem) error

	// GetItem retrieves a single item by its catalog ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id string) (*core.CatalogItem, error)

	// ListItems returns every stored item in catalog order.
	ListItems(ctx context.Context) ([]*core.CatalogItem, error)

	// ReplaceItems atomically makes items the entire catalog, in argument order.
	// On error the stored catalog is unchanged.
	ReplaceItems(ctx context.Context, items ...*core.CatalogItem) error

	// DeleteItems removes items by ID.
	// Returns ErrNotFound if any item doesn't exist; nothing is deleted in that case.
	DeleteItems(ctx context.Context, ids ...string) error

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)
}

// EmbeddingCache stores computed vectors keyed by embedding model and text hash,
// so re-indexing an unchanged catalog does not call the embedding service.
type EmbeddingCache interface {
	// GetEmbeddings returns the cached vectors for the given keys.
	// Keys without a cached vector are absent from the result.
	GetEmbeddings(ctx context.Context, model string, keys ...core.ID) (map[core.ID][]float32, error)

	// PutEmbeddings stores vectors for the given model.
	PutEmbeddings(ctx context.Context, model string, vectors map[core.ID][]float32) error
}

// ManifestRepository records the last successful index build.
type ManifestRepository interface {
	// SaveManifest replaces the stored manifest.
	SaveManifest(ctx context.Context, manifest *core.IndexManifest) error

	// LoadManifest returns the stored manifest.
	// Returns ErrNotFound if no index has been built yet.
	LoadManifest(ctx context.Context) (*core.IndexManifest, error)
}

// Store combines every repository behind one backend.
type Store interface {
	CatalogRepository
	EmbeddingCache
	ManifestRepository

	// Close closes the storage backend and releases resources.
	Close() error
}
