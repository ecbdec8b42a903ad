package ai

import "errors"

var (
	// ErrEmbedderUnavailable is returned while the embedding service is considered down.
	ErrEmbedderUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingCountMismatch is returned when a batch call returns the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
