package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/pathway/ai"
	"github.com/sony/gobreaker/v2"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// breakerMinRequests is the number of calls observed before the breaker may trip.
const breakerMinRequests = 5

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Every call goes through a circuit breaker so a dead embedding service
// fails fast instead of stalling each request for a full HTTP timeout.
type Embedder struct {
	embedder embeddings.Embedder
	breaker  *gobreaker.CircuitBreaker[[][]float32]
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(config.MaxBatchSize),
	)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel)

	return &Embedder{
		embedder: embedder,
		breaker:  newBreaker(config, logger),
		logger:   logger,
	}, nil
}

func newBreaker(config *ai.Config, logger *slog.Logger) *gobreaker.CircuitBreaker[[][]float32] {
	return gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        "embedder:" + config.EmbeddingModel,
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		// Caller cancellation says nothing about the health of the service.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.breaker.Execute(func() ([][]float32, error) {
		return e.embedder.EmbedDocuments(ctx, texts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ai.ErrEmbedderUnavailable, err)
		}
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, received %d", ai.ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}
	return vectors, nil
}
