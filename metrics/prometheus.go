package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/pathway/ai"
	"github.com/poiesic/pathway/core"
	"github.com/poiesic/pathway/recommend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pathway"

// Failure reasons used as the "reason" label.
const (
	ReasonInvalidParams  = "invalid_params"
	ReasonInvalidProfile = "invalid_profile"
	ReasonUnavailable    = "embedder_unavailable"
	ReasonCanceled       = "canceled"
	ReasonOther          = "other"
)

// PrometheusMonitor records recommendation requests as Prometheus metrics.
// It is safe for concurrent requests.
type PrometheusMonitor struct {
	requests prometheus.Counter
	failures *prometheus.CounterVec
	duration prometheus.Histogram
	queries  *prometheus.CounterVec
	eligible prometheus.Histogram
	results  prometheus.Histogram
	topScore prometheus.Histogram
}

var _ recommend.Monitor = (*PrometheusMonitor)(nil)

// NewPrometheusMonitor creates the metrics and registers them on reg.
// A nil reg registers on prometheus.DefaultRegisterer.
func NewPrometheusMonitor(reg prometheus.Registerer) *PrometheusMonitor {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMonitor{
		requests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests started",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_failures_total",
			Help:      "Total number of failed recommendation requests",
		}, []string{"reason"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Duration of successful recommendation requests in seconds",
			// query embedding dominates; a remote model takes tens to hundreds of ms
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_queries_total",
			Help:      "Total number of expanded profile queries by source field",
		}, []string{"source"}),
		eligible: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_eligible_items",
			Help:      "Number of catalog items passing the GPA gate per request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_results",
			Help:      "Number of programs returned per request",
			Buckets:   prometheus.LinearBuckets(0, 2, 11),
		}),
		topScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_top_score",
			Help:      "Final score of the best-ranked program per request",
			Buckets:   prometheus.LinearBuckets(0, 10, 14),
		}),
	}
}

// Start counts a request.
func (m *PrometheusMonitor) Start(_ *core.UserProfile) {
	m.requests.Inc()
}

// AfterQueryExpansion counts queries by the profile field they came from.
func (m *PrometheusMonitor) AfterQueryExpansion(queries []recommend.WeightedQuery) {
	for _, q := range queries {
		m.queries.WithLabelValues(string(q.Source)).Inc()
	}
}

// AfterFusion is a no-op.
func (m *PrometheusMonitor) AfterFusion(_ *recommend.FusionResult) {}

// AfterNumeric observes how many items passed the GPA gate.
func (m *PrometheusMonitor) AfterNumeric(scores []recommend.NumericScore) {
	eligible := 0
	for _, s := range scores {
		if s.Eligible {
			eligible++
		}
	}
	m.eligible.Observe(float64(eligible))
}

// Finish observes latency and result size.
func (m *PrometheusMonitor) Finish(results []core.ScoredCandidate, elapsed time.Duration) {
	m.duration.Observe(elapsed.Seconds())
	m.results.Observe(float64(len(results)))
	if len(results) > 0 {
		m.topScore.Observe(results[0].FinalScore)
	}
}

// Failed counts a failed request by reason.
func (m *PrometheusMonitor) Failed(err error) {
	m.failures.WithLabelValues(FailureReason(err)).Inc()
}

// FailureReason classifies a recommendation error into a label value.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, recommend.ErrInvalidParams):
		return ReasonInvalidParams
	case errors.Is(err, core.ErrInvalidProfile):
		return ReasonInvalidProfile
	case errors.Is(err, ai.ErrEmbedderUnavailable):
		return ReasonUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonOther
	}
}
