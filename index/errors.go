package index

import "errors"

var (
	// ErrEmbedderRequired is returned when Build is called without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrDimensionMismatch is returned when embeddings of one catalog differ in
	// length, or a query embedding does not match the index.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")

	// ErrEmptyEmbedding is returned when the embedder yields a zero-length vector.
	ErrEmptyEmbedding = errors.New("embedder returned an empty vector")

	// ErrInvalidMaxAttempts indicates maxAttempts must be greater than 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidOption is returned for out-of-range build options.
	ErrInvalidOption = errors.New("invalid index option")
)
