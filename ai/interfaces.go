package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be deterministic for a fixed input and must be
// thread-safe for concurrent use. Returned vectors are cosine-comparable;
// callers normalize them before taking dot products.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
