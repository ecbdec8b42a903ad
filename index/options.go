package index

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/poiesic/pathway/storage"
)

// Build defaults.
const (
	DefaultBatchSize   = 64
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
)

type options struct {
	batchSize   int
	poolSize    int
	maxAttempts int
	retryDelay  time.Duration
	cache       storage.EmbeddingCache
	model       string
	progress    io.Writer
	bm25        BM25Params
	logger      *slog.Logger
}

func defaultOptions() *options {
	return &options{
		batchSize:   DefaultBatchSize,
		poolSize:    max(runtime.NumCPU()/2, 1),
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		bm25:        DefaultBM25Params(),
		logger:      slog.Default(),
	}
}

// Option configures Build.
type Option func(*options) error

// WithBatchSize sets how many texts go to the embedder per call.
func WithBatchSize(size int) Option {
	return func(o *options) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size %d", ErrInvalidOption, size)
		}
		o.batchSize = size
		return nil
	}
}

// WithPoolSize sets how many embedding batches run concurrently.
func WithPoolSize(size int) Option {
	return func(o *options) error {
		if size < 1 {
			size = 1
		}
		o.poolSize = size
		return nil
	}
}

// WithRetry sets the attempts per batch and the initial backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *options) error {
		if maxAttempts < 1 {
			return fmt.Errorf("%w: %w", ErrInvalidOption, ErrInvalidMaxAttempts)
		}
		if baseDelay < 0 {
			return fmt.Errorf("%w: negative retry delay", ErrInvalidOption)
		}
		o.maxAttempts = maxAttempts
		o.retryDelay = baseDelay
		return nil
	}
}

// WithCache reuses and stores vectors keyed by model and text hash.
func WithCache(cache storage.EmbeddingCache, model string) Option {
	return func(o *options) error {
		if cache != nil && model == "" {
			return fmt.Errorf("%w: %w", ErrInvalidOption, storage.ErrInvalidModel)
		}
		o.cache = cache
		o.model = model
		return nil
	}
}

// WithProgress writes embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) error {
		o.progress = w
		return nil
	}
}

// WithBM25 overrides the lexical scoring parameters.
func WithBM25(params BM25Params) Option {
	return func(o *options) error {
		if params.K1 < 0 || params.B < 0 || params.B > 1 || params.Epsilon < 0 {
			return fmt.Errorf("%w: bm25 parameters %+v", ErrInvalidOption, params)
		}
		o.bm25 = params
		return nil
	}
}

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}
