// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recommend

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
)

// Recommender ranks programs of one catalog index. It holds no per-request
// state and is safe for concurrent use.
type Recommender struct {
	idx      *index.CatalogIndex
	embedder ai.Embedder
	defaults Params
	monitor  Monitor
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender) error

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor. A nil monitor disables monitoring.
func WithMonitor(monitor Monitor) Option {
	return func(r *Recommender) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithPool runs numeric scoring on pool instead of a fresh goroutine.
// The pool is owned by the caller.
func WithPool(pool *ants.Pool) Option {
	return func(r *Recommender) error {
		r.pool = pool
		return nil
	}
}

// WithDefaultParams sets the parameters requests start from.
func WithDefaultParams(params Params) Option {
	return func(r *Recommender) error {
		if err := params.Validate(); err != nil {
			return err
		}
		r.defaults = params
		return nil
	}
}

// NewRecommender creates a recommender over idx.
func NewRecommender(idx *index.CatalogIndex, embedder ai.Embedder, opts ...Option) (*Recommender, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Recommender{
		idx:      idx,
		embedder: embedder,
		defaults: DefaultParams(),
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "recommender")
	return r, nil
}

// Index returns the catalog index being ranked.
func (r *Recommender) Index() *index.CatalogIndex {
	return r.idx
}

// Recommend returns the top programs for profile.
func (r *Recommender) Recommend(ctx context.Context, profile *core.UserProfile, opts ...RequestOption) ([]core.Recommendation, error) {
	candidates, err := r.Score(ctx, profile, opts...)
	if err != nil {
		return nil, err
	}
	return Project(candidates), nil
}

// Score is Recommend with every score component kept.
func (r *Recommender) Score(ctx context.Context, profile *core.UserProfile, opts ...RequestOption) ([]core.ScoredCandidate, error) {
	params := r.defaults
	for _, opt := range opts {
		opt(&params)
	}
	return r.score(ctx, profile, params)
}

func (r *Recommender) score(ctx context.Context, profile *core.UserProfile, params Params) ([]core.ScoredCandidate, error) {
	start := time.Now()
	r.monitor.Start(profile)
	if err := params.Validate(); err != nil {
		r.monitor.Failed(err)
		return nil, err
	}
	if err := core.ValidateProfile(profile); err != nil {
		r.monitor.Failed(err)
		return nil, err
	}
	for subject := range profile.Grades {
		if !core.IsKnownSubject(subject) {
			r.logger.Debug("ignoring grade for unknown subject", "subject", subject)
		}
	}

	queries := BuildQueries(profile)
	r.monitor.AfterQueryExpansion(queries)

	// Numeric scoring does not depend on the queries, so it overlaps with
	// query embedding.
	numericCh := make(chan []NumericScore, 1)
	task := func() {
		numericCh <- ScoreAll(profile, r.idx)
	}
	if r.pool == nil || r.pool.Submit(task) != nil {
		go task()
	}

	fusion, err := FuseScores(ctx, queries, r.idx, r.embedder, params.Alpha)
	numeric := <-numericCh
	if err != nil {
		r.logger.Error("score fusion failed", "queries", len(queries), "err", err)
		r.monitor.Failed(err)
		return nil, err
	}
	r.monitor.AfterFusion(fusion)
	r.monitor.AfterNumeric(numeric)

	results := Rank(r.idx, fusion, numeric, params)
	elapsed := time.Since(start)
	r.logger.Debug("recommendation complete",
		"queries", len(queries),
		"results", len(results),
		"elapsed", elapsed)
	r.monitor.Finish(results, elapsed)
	return results, nil
}

// Recommend ranks idx for profile without a long-lived Recommender.
func Recommend(ctx context.Context, idx *index.CatalogIndex, embedder ai.Embedder, profile *core.UserProfile, params Params) ([]core.Recommendation, error) {
	r, err := NewRecommender(idx, embedder)
	if err != nil {
		return nil, err
	}
	candidates, err := r.score(ctx, profile, params)
	if err != nil {
		return nil, err
	}
	return Project(candidates), nil
}
