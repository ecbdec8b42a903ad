package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

// DefaultDimensions is the vector size produced by MockEmbedder.
const DefaultDimensions = 384

// DefaultBagOfWordsDimensions is the vector size produced by BagOfWordsEmbedder.
const DefaultBagOfWordsDimensions = 1024

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of generated vectors.
	Dimensions int

	mu        sync.Mutex
	callCount int
	texts     int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Returns the concrete type so tests can inspect call counts.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dimensions: DefaultDimensions}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.record(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return HashVector(text, m.dimensions()), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.record(len(texts))

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = HashVector(text, m.dimensions())
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// TextCount returns the total number of texts embedded across all calls.
func (m *MockEmbedder) TextCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.texts = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) record(texts int) {
	m.mu.Lock()
	m.callCount++
	m.texts += texts
	m.mu.Unlock()
}

func (m *MockEmbedder) dimensions() int {
	if m.Dimensions <= 0 {
		return DefaultDimensions
	}
	return m.Dimensions
}

// HashVector creates a deterministic unit vector from text.
// The same text always produces the same vector; different texts produce
// unrelated vectors.
func HashVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%2000)/1000.0 - 1.0
	}
	return unit(vector)
}

// BagOfWordsEmbedder maps each token to a hashed dimension and counts
// occurrences, so texts that share words have positive cosine similarity.
// It is useful for tests that need semantic scores with a predictable
// ordering without a real model.
type BagOfWordsEmbedder struct {
	Dimensions int

	mu        sync.Mutex
	callCount int
}

// NewBagOfWordsEmbedder creates a bag-of-words embedder.
func NewBagOfWordsEmbedder() *BagOfWordsEmbedder {
	return &BagOfWordsEmbedder{Dimensions: DefaultBagOfWordsDimensions}
}

// EmbedText embeds a single text.
func (b *BagOfWordsEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds each text as a normalized term-count vector.
func (b *BagOfWordsEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	b.callCount++
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dim := b.Dimensions
	if dim <= 0 {
		dim = DefaultBagOfWordsDimensions
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector := make([]float32, dim)
		for _, word := range words(text) {
			h := fnv.New32a()
			h.Write([]byte(word))
			vector[h.Sum32()%uint32(dim)]++
		}
		vectors[i] = unit(vector)
	}
	return vectors, nil
}

// CallCount returns the number of EmbedTexts calls.
func (b *BagOfWordsEmbedder) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.callCount
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func unit(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vector
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
	return vector
}
