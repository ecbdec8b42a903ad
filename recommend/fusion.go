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
	"fmt"

	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/index"
)

// degenerateSpread is the largest max-min treated as "no discrimination".
const degenerateSpread = 1e-9

// FusionResult holds per-item text scores, aligned with catalog order.
type FusionResult struct {
	SemanticRaw []float64
	LexicalRaw  []float64
	Semantic    []float64 // normalized to [0,100]
	Lexical     []float64 // normalized to [0,100]
	Text        []float64
}

// MinMaxNormalize rescales raw to [0,100]. When max-min is at most 1e-9
// every value maps to 0.
func MinMaxNormalize(raw []float64) []float64 {
	out := make([]float64, len(raw))
	if len(raw) == 0 {
		return out
	}
	lo, hi := raw[0], raw[0]
	for _, v := range raw[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	spread := hi - lo
	if spread <= degenerateSpread {
		return out
	}
	for i, v := range raw {
		out[i] = (v - lo) / spread * 100
	}
	return out
}

// FuseScores scores every catalog item against queries.
//
// The semantic channel embeds all queries in one call and sums
// weight*cosine per item. The lexical channel sums unweighted BM25 scores.
// With no queries every score is zero and the embedder is not called.
func FuseScores(ctx context.Context, queries []WeightedQuery, idx *index.CatalogIndex, embedder ai.Embedder, alpha float64) (*FusionResult, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	n := idx.Len()
	result := &FusionResult{
		SemanticRaw: make([]float64, n),
		LexicalRaw:  make([]float64, n),
		Semantic:    make([]float64, n),
		Lexical:     make([]float64, n),
		Text:        make([]float64, n),
	}
	if len(queries) == 0 || n == 0 {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	texts := QueryTexts(queries)
	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d queries: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, received %d", ai.ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dims := idx.Dimensions()
	for qi, q := range queries {
		qv := index.NormalizeVector(vectors[qi])
		if len(qv) != dims {
			return nil, fmt.Errorf("%w: query %d has %d dimensions, index has %d", index.ErrDimensionMismatch, qi, len(qv), dims)
		}
		for i := 0; i < n; i++ {
			result.SemanticRaw[i] += q.Weight * index.Dot(qv, idx.Embedding(i))
		}
	}

	lexical := idx.Lexical()
	for _, text := range texts {
		for i, s := range lexical.Scores(text) {
			result.LexicalRaw[i] += s
		}
	}

	result.Semantic = MinMaxNormalize(result.SemanticRaw)
	result.Lexical = MinMaxNormalize(result.LexicalRaw)
	for i := 0; i < n; i++ {
		result.Text[i] = alpha*result.Semantic[i] + (1-alpha)*result.Lexical[i]
	}
	return result, nil
}
