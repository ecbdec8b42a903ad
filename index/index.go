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


package index

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/core"
)

// NumericStats are the catalog-wide values the numeric component is
// measured against.
type NumericStats struct {
	AutomationMin float64
	AutomationMax float64
	// MaxDuration ignores zero durations and is 1.0 when every duration is zero.
	MaxDuration float64
}

// ComputeNumericStats scans items for the automation range and the longest
// study duration.
func ComputeNumericStats(items []core.CatalogItem) NumericStats {
	stats := NumericStats{}
	for i := range items {
		risk := items[i].AutomationRiskScore
		if i == 0 || risk < stats.AutomationMin {
			stats.AutomationMin = risk
		}
		if i == 0 || risk > stats.AutomationMax {
			stats.AutomationMax = risk
		}
		if d := items[i].StudyDurationYears; d != 0 && d > stats.MaxDuration {
			stats.MaxDuration = d
		}
	}
	if stats.MaxDuration == 0 {
		stats.MaxDuration = 1.0
	}
	return stats
}

// Component returns the unscaled 0-100 desirability of an item: the mean
// of a low-automation-risk score and a short-duration score.
func (s NumericStats) Component(item *core.CatalogItem) float64 {
	automation := 50.0
	if spread := s.AutomationMax - s.AutomationMin; spread > 0 {
		automation = (s.AutomationMax - item.AutomationRiskScore) / spread * 100
	}
	duration := 50.0
	if s.MaxDuration > 0 {
		duration = (1 - item.StudyDurationYears/s.MaxDuration) * 100
	}
	return (automation + duration) / 2
}

// CatalogIndex is the immutable per-catalog state shared by all requests.
// Every per-item slice is aligned with catalog order.
type CatalogIndex struct {
	items       []core.CatalogItem
	texts       []string
	embeddings  [][]float32
	lexical     *LexicalIndex
	stats       NumericStats
	numeric     []float64
	fingerprint core.ID
	dimensions  int
	builtAt     time.Time
}

// Build validates items and builds an index over a private copy of them.
// An empty catalog is valid and yields an empty index.
func Build(ctx context.Context, items []core.CatalogItem, embedder ai.Embedder, opts ...Option) (*CatalogIndex, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if err := core.ValidateCatalog(items); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := o.logger.With("component", "index")

	n := len(items)
	idx := &CatalogIndex{
		items:   make([]core.CatalogItem, n),
		texts:   make([]string, n),
		numeric: make([]float64, n),
	}
	tokens := make([][]string, n)
	for i := range items {
		idx.items[i] = items[i].Clone()
		idx.texts[i] = idx.items[i].SearchableText()
		tokens[i] = Tokenize(idx.texts[i])
	}
	idx.lexical = NewLexicalIndex(tokens, o.bm25)

	o.logger = logger
	embeddings, err := o.embedAll(ctx, embedder, idx.texts)
	if err != nil {
		logger.Error("catalog embedding failed", "items", n, "err", err)
		return nil, err
	}
	idx.embeddings = embeddings
	if n > 0 {
		idx.dimensions = len(embeddings[0])
	}

	idx.stats = ComputeNumericStats(idx.items)
	for i := range idx.items {
		idx.numeric[i] = idx.stats.Component(&idx.items[i])
	}
	idx.fingerprint = Fingerprint(idx.items)
	idx.builtAt = time.Now().UTC()

	logger.Info("catalog index built",
		"items", n,
		"dimensions", idx.dimensions,
		"fingerprint", uint64(idx.fingerprint),
		"elapsed", time.Since(start))
	return idx, nil
}

// Fingerprint hashes everything about a catalog that affects scoring, in
// catalog order. Two catalogs with equal fingerprints rank identically for
// the same embedder.
func Fingerprint(items []core.CatalogItem) core.ID {
	var sb strings.Builder
	num := func(v float64) {
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		sb.WriteByte(0x1f)
	}
	for i := range items {
		item := &items[i]
		sb.WriteString(item.ID)
		sb.WriteByte(0x1f)
		sb.WriteString(item.SearchableText())
		sb.WriteByte(0x1f)
		num(item.MinGPA)
		num(item.StudyDurationYears)
		num(item.AutomationRiskScore)
		subjects := make([]string, 0, len(item.SubjectWeights))
		for s := range item.SubjectWeights {
			subjects = append(subjects, string(s))
		}
		slices.Sort(subjects)
		for _, s := range subjects {
			sb.WriteString(s)
			num(item.SubjectWeights[core.Subject(s)])
		}
		sb.WriteByte(0x1e)
	}
	return core.IDFromContent(sb.String())
}

// Len returns the number of catalog items.
func (c *CatalogIndex) Len() int {
	return len(c.items)
}

// Item returns the item at catalog position i. The item must not be modified.
func (c *CatalogIndex) Item(i int) *core.CatalogItem {
	return &c.items[i]
}

// Items returns a copy of the catalog in order.
func (c *CatalogIndex) Items() []core.CatalogItem {
	out := make([]core.CatalogItem, len(c.items))
	for i := range c.items {
		out[i] = c.items[i].Clone()
	}
	return out
}

// Text returns the searchable text of item i.
func (c *CatalogIndex) Text(i int) string {
	return c.texts[i]
}

// Embedding returns the unit vector of item i. It must not be modified.
func (c *CatalogIndex) Embedding(i int) []float32 {
	return c.embeddings[i]
}

// Lexical returns the BM25 index over the catalog texts.
func (c *CatalogIndex) Lexical() *LexicalIndex {
	return c.lexical
}

// Stats returns the catalog-wide numeric statistics.
func (c *CatalogIndex) Stats() NumericStats {
	return c.stats
}

// NumericComponent returns the precomputed 0-100 numeric desirability of item i.
func (c *CatalogIndex) NumericComponent(i int) float64 {
	return c.numeric[i]
}

// Fingerprint returns the catalog content hash.
func (c *CatalogIndex) Fingerprint() core.ID {
	return c.fingerprint
}

// Dimensions returns the embedding length, 0 for an empty catalog.
func (c *CatalogIndex) Dimensions() int {
	return c.dimensions
}

// Manifest describes this index as built with the named embedding model.
func (c *CatalogIndex) Manifest(model string) *core.IndexManifest {
	return &core.IndexManifest{
		Model:       model,
		Fingerprint: c.fingerprint,
		Items:       len(c.items),
		Dimensions:  c.dimensions,
		BuiltAt:     c.builtAt,
	}
}
