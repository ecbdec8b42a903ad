package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/ai/mock"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/index"
	"github.com/poiesic/pathway/recommend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{fmt.Errorf("%w: alpha", recommend.ErrInvalidParams), ReasonInvalidParams},
		{fmt.Errorf("%w: gpa", core.ErrInvalidProfile), ReasonInvalidProfile},
		{fmt.Errorf("embedding: %w", ai.ErrEmbedderUnavailable), ReasonUnavailable},
		{context.Canceled, ReasonCanceled},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), ReasonCanceled},
		{errors.New("boom"), ReasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FailureReason(tt.err))
		})
	}
}

func TestPrometheusMonitor_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMonitor(reg)

	m.Start(&core.UserProfile{})
	m.AfterQueryExpansion([]recommend.WeightedQuery{
		{Text: "programming", Source: recommend.SourceSkills},
		{Text: "math", Source: recommend.SourceSkills},
		{Text: "accounting", Source: recommend.SourceDislikes},
	})
	m.AfterNumeric([]recommend.NumericScore{{Eligible: true}, {Eligible: false}, {Eligible: true}})
	m.Finish([]core.ScoredCandidate{{FinalScore: 91}}, 20*time.Millisecond)
	m.Failed(context.Canceled)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("skills")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("dislikes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(ReasonCanceled)))

	expected := `
# HELP pathway_recommendation_results Number of programs returned per request
# TYPE pathway_recommendation_results histogram
pathway_recommendation_results_bucket{le="0"} 0
pathway_recommendation_results_bucket{le="2"} 1
pathway_recommendation_results_bucket{le="4"} 1
pathway_recommendation_results_bucket{le="6"} 1
pathway_recommendation_results_bucket{le="8"} 1
pathway_recommendation_results_bucket{le="10"} 1
pathway_recommendation_results_bucket{le="12"} 1
pathway_recommendation_results_bucket{le="14"} 1
pathway_recommendation_results_bucket{le="16"} 1
pathway_recommendation_results_bucket{le="18"} 1
pathway_recommendation_results_bucket{le="20"} 1
pathway_recommendation_results_bucket{le="+Inf"} 1
pathway_recommendation_results_sum 1
pathway_recommendation_results_count 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pathway_recommendation_results"))
}

func TestPrometheusMonitor_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusMonitor(prometheus.NewRegistry())
		NewPrometheusMonitor(prometheus.NewRegistry())
	})
}

func TestPrometheusMonitor_WithRecommender(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewBagOfWordsEmbedder()
	idx, err := index.Build(ctx, []core.CatalogItem{
		{ID: "cs", Name: "Computer Science", Description: "programming software", MinGPA: 70},
		{ID: "law", Name: "Law", Description: "legal studies courts", MinGPA: 85},
	}, embedder)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := NewPrometheusMonitor(reg)
	r, err := recommend.NewRecommender(idx, embedder, recommend.WithMonitor(m))
	require.NoError(t, err)

	_, err = r.Recommend(ctx, &core.UserProfile{GPA: core.Float64(80), Skills: []string{"programming"}})
	require.NoError(t, err)
	_, err = r.Recommend(ctx, &core.UserProfile{}, recommend.WithTopN(-1))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("skills")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(ReasonInvalidParams)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.eligible))
}
