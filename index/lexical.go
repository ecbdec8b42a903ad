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
	"math"
	"slices"
)

// BM25 Okapi defaults.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// BM25Params tunes the lexical scorer.
type BM25Params struct {
	K1      float64 // term frequency saturation
	B       float64 // document length normalization
	Epsilon float64 // floor for negative IDF, as a fraction of the average IDF
}

// DefaultBM25Params returns K1=1.5, B=0.75, Epsilon=0.25.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: DefaultK1, B: DefaultB, Epsilon: DefaultEpsilon}
}

// LexicalIndex scores a query against every document with BM25 Okapi.
//
// Terms that occur in more than half of the documents would get a negative
// IDF; they are floored to Epsilon times the average IDF instead.
type LexicalIndex struct {
	params    BM25Params
	termFreqs []map[string]int
	docLens   []float64
	avgdl     float64
	idf       map[string]float64
}

// NewLexicalIndex builds an index over pre-tokenized documents.
func NewLexicalIndex(docs [][]string, params BM25Params) *LexicalIndex {
	l := &LexicalIndex{
		params:    params,
		termFreqs: make([]map[string]int, len(docs)),
		docLens:   make([]float64, len(docs)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	total := 0
	for i, doc := range docs {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term := range tf {
			docFreq[term]++
		}
		l.termFreqs[i] = tf
		l.docLens[i] = float64(len(doc))
		total += len(doc)
	}
	if len(docs) > 0 {
		l.avgdl = float64(total) / float64(len(docs))
	}

	// Sum in a fixed order so the average, and every score, is reproducible.
	vocab := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocab = append(vocab, term)
	}
	slices.Sort(vocab)

	n := float64(len(docs))
	idfSum := 0.0
	var negative []string
	for _, term := range vocab {
		df := float64(docFreq[term])
		idf := math.Log(n-df+0.5) - math.Log(df+0.5)
		l.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(vocab) > 0 {
		floor := params.Epsilon * idfSum / float64(len(vocab))
		for _, term := range negative {
			l.idf[term] = floor
		}
	}
	return l
}

// Len returns the number of documents.
func (l *LexicalIndex) Len() int {
	return len(l.docLens)
}

// IDF returns the inverse document frequency of an already tokenized term,
// or 0 for terms outside the vocabulary.
func (l *LexicalIndex) IDF(term string) float64 {
	return l.idf[term]
}

// Scores tokenizes query and scores it against every document.
func (l *LexicalIndex) Scores(query string) []float64 {
	return l.ScoreTokens(Tokenize(query))
}

// ScoreTokens scores tokenized query terms against every document.
// Repeated query terms contribute once per occurrence.
func (l *LexicalIndex) ScoreTokens(terms []string) []float64 {
	scores := make([]float64, len(l.docLens))
	if l.avgdl == 0 {
		return scores
	}
	k1, b := l.params.K1, l.params.B
	for _, term := range terms {
		idf, ok := l.idf[term]
		if !ok {
			continue
		}
		for i, tf := range l.termFreqs {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			scores[i] += idf * (f * (k1 + 1)) / (f + k1*(1-b+b*l.docLens[i]/l.avgdl))
		}
	}
	return scores
}
