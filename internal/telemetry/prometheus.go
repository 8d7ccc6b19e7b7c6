package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkingpass/internal/types"
)

const promNamespace = "parkingpass"

var _ Metrics = (*PrometheusMetrics)(nil)

// PrometheusMetrics exposes the same measurements as CloudWatchMetrics for
// scraping. Collectors live on a private registry so several instances can
// coexist in tests.
type PrometheusMetrics struct {
	registry          *prometheus.Registry
	feedRefreshes     *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	predictionHorizon prometheus.Histogram
}

// NewPrometheusMetrics creates and registers the collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		feedRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: promNamespace,
				Subsystem: "feed",
				Name:      "refreshes_total",
				Help:      "Weather and holiday feed refreshes by outcome",
			},
			[]string{"provider", "result"},
		),
		predictionLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: promNamespace,
				Subsystem: "prediction",
				Name:      "duration_seconds",
				Help:      "Time to score one prediction horizon, feed refresh included",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		predictionHorizon: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: promNamespace,
				Subsystem: "prediction",
				Name:      "horizon_hours",
				Help:      "Hours requested per prediction",
				Buckets:   []float64{1, 6, 12, 24, 48, 72},
			},
		),
	}

	m.registry.MustRegister(m.feedRefreshes, m.predictionLatency, m.predictionHorizon)
	return m
}

// RecordFeedRefresh increments the refresh counter.
func (m *PrometheusMetrics) RecordFeedRefresh(_ context.Context, provider string, result types.FeedResult) {
	m.feedRefreshes.WithLabelValues(provider, string(result)).Inc()
}

// RecordPrediction observes latency and horizon.
func (m *PrometheusMetrics) RecordPrediction(_ context.Context, duration time.Duration, horizon int) {
	m.predictionLatency.Observe(duration.Seconds())
	m.predictionHorizon.Observe(float64(horizon))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Multi fans every measurement out to each backend in order.
type Multi []Metrics

func (mm Multi) RecordFeedRefresh(ctx context.Context, provider string, result types.FeedResult) {
	for _, m := range mm {
		m.RecordFeedRefresh(ctx, provider, result)
	}
}

func (mm Multi) RecordPrediction(ctx context.Context, duration time.Duration, horizon int) {
	for _, m := range mm {
		m.RecordPrediction(ctx, duration, horizon)
	}
}
