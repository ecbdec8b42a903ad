package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/core"
)

// embedAll returns one unit vector per text, in text order.
//
// Identical texts are embedded once. Vectors found in the cache are reused;
// the rest are embedded in batches on a goroutine pool and written back to
// the cache. Vectors are normalized before caching so a cached build and a
// fresh build yield identical bits.
func (o *options) embedAll(ctx context.Context, embedder ai.Embedder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]core.ID, len(texts))
	first := make(map[core.ID]int, len(texts))
	unique := make([]core.ID, 0, len(texts))
	for i, text := range texts {
		keys[i] = core.IDFromContent(text)
		if _, seen := first[keys[i]]; !seen {
			first[keys[i]] = i
			unique = append(unique, keys[i])
		}
	}

	cached := map[core.ID][]float32{}
	if o.cache != nil {
		found, err := o.cache.GetEmbeddings(ctx, o.model, unique...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("embedding cache read failed, embedding everything", "err", err)
		} else {
			cached = found
		}
	}

	var pending []int
	for _, key := range unique {
		if _, ok := cached[key]; !ok {
			pending = append(pending, first[key])
		}
	}
	o.logger.Debug("embedding catalog texts", "texts", len(texts), "unique", len(unique), "cached", len(cached), "pending", len(pending))

	fresh, err := o.embedPending(ctx, embedder, texts, keys, pending)
	if err != nil {
		return nil, err
	}

	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutEmbeddings(ctx, o.model, fresh); err != nil {
			o.logger.Warn("embedding cache write failed", "err", err)
		}
	}

	vectors := make([][]float32, len(texts))
	dims := -1
	for i, key := range keys {
		vector, ok := fresh[key]
		if !ok {
			vector = cached[key]
		}
		if len(vector) == 0 {
			return nil, fmt.Errorf("%w: catalog position %d", ErrEmptyEmbedding, i)
		}
		if dims >= 0 && len(vector) != dims {
			return nil, fmt.Errorf("%w: %d and %d at catalog position %d", ErrDimensionMismatch, dims, len(vector), i)
		}
		dims = len(vector)
		vectors[i] = vector
	}
	return vectors, nil
}

// embedPending embeds texts[pending[...]] in batches, concurrently.
// The first failing batch cancels the rest.
func (o *options) embedPending(ctx context.Context, embedder ai.Embedder, texts []string, keys []core.ID, pending []int) (map[core.ID][]float32, error) {
	fresh := make(map[core.ID][]float32, len(pending))
	if len(pending) == 0 {
		return fresh, nil
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var progress *ProgressTracker
	if o.progress != nil {
		progress = NewProgressTracker(o.progress, len(pending), o.batchSize)
		progress.Start()
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for start := 0; start < len(pending); start += o.batchSize {
		batch := pending[start:min(start+o.batchSize, len(pending))]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			vectors, err := o.embedBatch(ctx, embedder, texts, batch)
			if err != nil {
				cancel(err)
				return
			}
			mu.Lock()
			for j, idx := range batch {
				fresh[keys[idx]] = vectors[j]
			}
			mu.Unlock()
			if progress != nil {
				progress.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			cancel(submitErr)
			break
		}
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	if progress != nil {
		progress.Finish()
	}
	return fresh, nil
}

func (o *options) embedBatch(ctx context.Context, embedder ai.Embedder, texts []string, batch []int) ([][]float32, error) {
	batchTexts := make([]string, len(batch))
	for j, idx := range batch {
		batchTexts[j] = texts[idx]
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, o.logger, func() error {
		var err error
		vectors, err = embedder.EmbedTexts(ctx, batchTexts)
		if err == nil && len(vectors) != len(batchTexts) {
			err = fmt.Errorf("%w: expected %d, received %d", ai.ErrEmbeddingCountMismatch, len(batchTexts), len(vectors))
		}
		return err
	}, o.maxAttempts, o.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch of %d texts: %w", len(batch), err)
	}

	for j := range vectors {
		vectors[j] = NormalizeVector(vectors[j])
	}
	return vectors, nil
}
