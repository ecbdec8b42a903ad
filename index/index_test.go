package index

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/pathway/ai/mock"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []core.CatalogItem {
	return []core.CatalogItem{
		{
			ID: "cs", Name: "Computer Science", Domain: "Technology",
			Description: "programming software algorithms",
			StudyDurationYears: 4, AutomationRiskScore: 0.2, MinGPA: 85,
			SubjectWeights: map[core.Subject]float64{core.SubjectMathematics: 0.8},
		},
		{
			ID: "acc", Name: "Accounting", Domain: "Business",
			Description: "finance audit bookkeeping",
			StudyDurationYears: 0, AutomationRiskScore: 0.8,
		},
		{
			ID: "bio", Name: "Biology", Domain: "Science",
			Description: "genetics lab research",
			StudyDurationYears: 5, AutomationRiskScore: 0.5,
		},
	}
}

func TestComputeNumericStats(t *testing.T) {
	items := testCatalog()
	stats := ComputeNumericStats(items)

	assert.Equal(t, NumericStats{AutomationMin: 0.2, AutomationMax: 0.8, MaxDuration: 5}, stats)

	// cs: automation 100, duration 20
	assert.InDelta(t, 60.0, stats.Component(&items[0]), 1e-9)
	// acc: automation 0, duration 100
	assert.InDelta(t, 50.0, stats.Component(&items[1]), 1e-9)
	// bio: automation 50, duration 0
	assert.InDelta(t, 25.0, stats.Component(&items[2]), 1e-9)
}

func TestComputeNumericStats_Flat(t *testing.T) {
	items := []core.CatalogItem{
		{ID: "a", AutomationRiskScore: 0.4},
		{ID: "b", AutomationRiskScore: 0.4},
	}
	stats := ComputeNumericStats(items)

	assert.Equal(t, 1.0, stats.MaxDuration, "all durations zero")
	// automation flat 50, duration (1-0/1)*100
	assert.InDelta(t, 75.0, stats.Component(&items[0]), 1e-9)
}

func TestBuild(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx, err := Build(context.Background(), testCatalog(), embedder)
	require.NoError(t, err)

	require.Equal(t, 3, idx.Len())
	assert.Equal(t, mock.DefaultDimensions, idx.Dimensions())
	assert.Equal(t, "cs", idx.Item(0).ID)
	assert.Equal(t, "bio", idx.Item(2).ID)
	assert.Equal(t, "Accounting Business finance audit bookkeeping", idx.Text(1))
	assert.Equal(t, 3, idx.Lexical().Len())
	assert.InDelta(t, 60.0, idx.NumericComponent(0), 1e-9)
	assert.InDelta(t, 25.0, idx.NumericComponent(2), 1e-9)

	for i := 0; i < idx.Len(); i++ {
		v := idx.Embedding(i)
		assert.InDelta(t, 1.0, Dot(v, v), 1e-5)
	}

	manifest := idx.Manifest("minilm")
	assert.Equal(t, "minilm", manifest.Model)
	assert.Equal(t, 3, manifest.Items)
	assert.Equal(t, idx.Fingerprint(), manifest.Fingerprint)
	assert.False(t, manifest.BuiltAt.IsZero())
}

func TestBuild_SnapshotIsImmutable(t *testing.T) {
	items := testCatalog()
	idx, err := Build(context.Background(), items, mock.NewMockEmbedder())
	require.NoError(t, err)

	items[0].Name = "changed"
	items[0].SubjectWeights[core.SubjectMathematics] = 0

	assert.Equal(t, "Computer Science", idx.Item(0).Name)
	assert.Equal(t, 0.8, idx.Item(0).Weight(core.SubjectMathematics))

	copied := idx.Items()
	copied[0].Name = "also changed"
	assert.Equal(t, "Computer Science", idx.Item(0).Name)
}

func TestBuild_EmptyCatalog(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx, err := Build(context.Background(), nil, embedder)
	require.NoError(t, err)

	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.Dimensions())
	assert.Empty(t, idx.Lexical().Scores("anything"))
	assert.Zero(t, embedder.CallCount())
}

func TestBuild_Validation(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := Build(context.Background(), testCatalog(), nil)
		require.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		items := testCatalog()
		items[2].ID = "cs"
		_, err := Build(context.Background(), items, mock.NewMockEmbedder())
		require.ErrorIs(t, err, core.ErrDuplicateItemID)
	})

	t.Run("invalid option", func(t *testing.T) {
		_, err := Build(context.Background(), testCatalog(), mock.NewMockEmbedder(), WithBatchSize(0))
		require.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("cache without model", func(t *testing.T) {
		store, err := badger.NewMemoryStore()
		require.NoError(t, err)
		defer store.Close()

		_, err = Build(context.Background(), testCatalog(), mock.NewMockEmbedder(), WithCache(store, ""))
		require.ErrorIs(t, err, ErrInvalidOption)
	})
}

func TestBuild_BatchesAndDeduplicates(t *testing.T) {
	items := testCatalog()
	items = append(items, core.CatalogItem{ID: "cs2", Name: items[0].Name, Domain: items[0].Domain, Description: items[0].Description})
	// cs2 differs from cs only in numeric fields, so its text is identical.
	require.Equal(t, items[0].SearchableText(), items[3].SearchableText())

	embedder := mock.NewMockEmbedder()
	idx, err := Build(context.Background(), items, embedder, WithBatchSize(1), WithPoolSize(2))
	require.NoError(t, err)

	assert.Equal(t, 3, embedder.CallCount(), "one call per unique text")
	assert.Equal(t, 3, embedder.TextCount())
	assert.Equal(t, idx.Embedding(0), idx.Embedding(3))
}

func TestBuild_UsesCache(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := mock.NewMockEmbedder()
	idx1, err := Build(ctx, testCatalog(), first, WithCache(store, "minilm"))
	require.NoError(t, err)
	assert.Equal(t, 3, first.TextCount())

	second := mock.NewMockEmbedder()
	idx2, err := Build(ctx, testCatalog(), second, WithCache(store, "minilm"))
	require.NoError(t, err)
	assert.Zero(t, second.CallCount(), "every vector cached")

	for i := 0; i < idx1.Len(); i++ {
		assert.Equal(t, idx1.Embedding(i), idx2.Embedding(i))
	}

	t.Run("other model misses", func(t *testing.T) {
		third := mock.NewMockEmbedder()
		_, err := Build(ctx, testCatalog(), third, WithCache(store, "other"))
		require.NoError(t, err)
		assert.Equal(t, 3, third.TextCount())
	})

	t.Run("changed item re-embedded", func(t *testing.T) {
		items := testCatalog()
		items[1].Description = "finance audit taxation"
		fourth := mock.NewMockEmbedder()
		_, err := Build(ctx, items, fourth, WithCache(store, "minilm"))
		require.NoError(t, err)
		assert.Equal(t, 1, fourth.TextCount())
	})
}

func TestBuild_RetriesTransientFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("temporary outage")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.HashVector(text, 8)
		}
		return out, nil
	}

	idx, err := Build(context.Background(), testCatalog(), embedder, WithRetry(2, time.Millisecond), WithPoolSize(1))
	require.NoError(t, err)
	assert.Equal(t, 8, idx.Dimensions())
}

func TestBuild_Failures(t *testing.T) {
	t.Run("persistent embedder failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		boom := errors.New("service down")
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, boom
		}

		_, err := Build(context.Background(), testCatalog(), embedder, WithRetry(2, time.Millisecond), WithBatchSize(1))
		require.ErrorIs(t, err, boom)
	})

	t.Run("wrong vector count", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}

		_, err := Build(context.Background(), testCatalog(), embedder, WithRetry(1, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding count mismatch")
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = mock.HashVector(text, 4+len(text)%2+i)
			}
			return out, nil
		}

		_, err := Build(context.Background(), testCatalog(), embedder, WithRetry(1, 0))
		require.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("empty vector", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return make([][]float32, len(texts)), nil
		}

		_, err := Build(context.Background(), testCatalog(), embedder, WithRetry(1, 0))
		require.ErrorIs(t, err, ErrEmptyEmbedding)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Build(ctx, testCatalog(), mock.NewMockEmbedder())
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuild_Progress(t *testing.T) {
	var buf bytes.Buffer
	_, err := Build(context.Background(), testCatalog(), mock.NewMockEmbedder(), WithProgress(&buf), WithBatchSize(1))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Embedding: 3/3")
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint(testCatalog())
	assert.Equal(t, base, Fingerprint(testCatalog()))

	tests := []struct {
		name   string
		mutate func(items []core.CatalogItem) []core.CatalogItem
	}{
		{"text change", func(items []core.CatalogItem) []core.CatalogItem {
			items[0].Description += " networks"
			return items
		}},
		{"numeric change", func(items []core.CatalogItem) []core.CatalogItem {
			items[1].MinGPA = 70
			return items
		}},
		{"weight change", func(items []core.CatalogItem) []core.CatalogItem {
			items[0].SubjectWeights[core.SubjectMathematics] = 0.7
			return items
		}},
		{"reorder", func(items []core.CatalogItem) []core.CatalogItem {
			items[0], items[1] = items[1], items[0]
			return items
		}},
		{"removal", func(items []core.CatalogItem) []core.CatalogItem {
			return items[:2]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, Fingerprint(tt.mutate(testCatalog())))
		})
	}
}
