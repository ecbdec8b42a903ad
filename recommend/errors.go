package recommend

import "errors"

var (
	// ErrIndexRequired is returned when no catalog index is supplied.
	ErrIndexRequired = errors.New("catalog index is required")

	// ErrEmbedderRequired is returned when no embedder is supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrInvalidParams is returned for out-of-range ranking parameters.
	ErrInvalidParams = errors.New("invalid ranking parameters")
)
