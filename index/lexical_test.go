package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idf for a term found in 1 of 4 documents: ln(3.5) - ln(1.5)
var rareIDF = math.Log(3.5) - math.Log(1.5)

func TestLexicalIndex_Scores(t *testing.T) {
	docs := [][]string{
		{"a", "b"},
		{"b", "c"},
		{"c", "d", "e"},
		{"f"},
	}
	l := NewLexicalIndex(docs, DefaultBM25Params())

	require.Equal(t, 4, l.Len())
	assert.InDelta(t, rareIDF, l.IDF("a"), 1e-12)
	assert.InDelta(t, 0.0, l.IDF("b"), 1e-12, "term in half the documents")
	assert.Zero(t, l.IDF("unknown"))

	t.Run("average length document", func(t *testing.T) {
		scores := l.Scores("a")
		// dl == avgdl, so the length factor is 1 and tf=1 cancels out
		assert.InDelta(t, rareIDF, scores[0], 1e-12)
		assert.Zero(t, scores[1])
		assert.Zero(t, scores[2])
		assert.Zero(t, scores[3])
	})

	t.Run("longer document scores lower", func(t *testing.T) {
		scores := l.Scores("e")
		expected := rareIDF * 2.5 / (1 + 1.5*(0.25+0.75*1.5))
		assert.InDelta(t, expected, scores[2], 1e-12)
		assert.Less(t, scores[2], l.Scores("a")[0])
	})

	t.Run("repeated query terms add up", func(t *testing.T) {
		assert.InDelta(t, 2*l.Scores("a")[0], l.Scores("a a")[0], 1e-12)
	})

	t.Run("query is tokenized", func(t *testing.T) {
		assert.Equal(t, l.Scores("a"), l.Scores("  A, "))
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Equal(t, []float64{0, 0, 0, 0}, l.Scores("zzz"))
	})
}

func TestLexicalIndex_NegativeIDFFloor(t *testing.T) {
	docs := [][]string{
		{"x", "a"},
		{"x", "b"},
		{"x", "c"},
		{"y"},
	}
	l := NewLexicalIndex(docs, DefaultBM25Params())

	// x appears in 3 of 4 documents: raw idf is -rareIDF.
	// average over {a,b,c,y,x} = (4*rareIDF - rareIDF) / 5
	floor := 0.25 * (3 * rareIDF / 5)
	assert.InDelta(t, floor, l.IDF("x"), 1e-12)
	assert.Greater(t, l.Scores("x")[0], 0.0)
}

func TestLexicalIndex_TermSaturation(t *testing.T) {
	docs := [][]string{
		{"data", "x", "x", "x"},
		{"data", "data", "x", "x"},
		{"data", "data", "data", "data"},
		{"y", "y", "y", "y"},
		{"z", "z", "z", "z"},
	}
	l := NewLexicalIndex(docs, DefaultBM25Params())
	scores := l.Scores("data")

	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[2], scores[1])
	// doubling tf from 2 to 4 less than doubles the score
	assert.Less(t, scores[2], 2*scores[1])
}

func TestLexicalIndex_Degenerate(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		l := NewLexicalIndex(nil, DefaultBM25Params())
		assert.Empty(t, l.Scores("anything"))
	})

	t.Run("only empty documents", func(t *testing.T) {
		l := NewLexicalIndex([][]string{{}, {}}, DefaultBM25Params())
		assert.Equal(t, []float64{0, 0}, l.Scores("anything"))
	})
}

func TestLexicalIndex_Deterministic(t *testing.T) {
	docs := [][]string{
		Tokenize("software engineering programming algorithms"),
		Tokenize("accounting finance audit"),
		Tokenize("biology genetics lab"),
		Tokenize("painting drawing art"),
		Tokenize("software finance analytics"),
	}
	first := NewLexicalIndex(docs, DefaultBM25Params()).Scores("software finance art")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, NewLexicalIndex(docs, DefaultBM25Params()).Scores("software finance art"))
	}
}
