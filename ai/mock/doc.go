// Package mock provides test double implementations of ai.Embedder.
//
// The mocks let tests run without an embedding service and give controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: unit vectors derived from a hash of the whole text
//   - BagOfWordsEmbedder: unit term-count vectors, so shared words mean
//     positive similarity
package mock
