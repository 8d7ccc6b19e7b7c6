// Package telemetry publishes operational metrics for feed refreshes and
// prediction requests.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"parkingpass/internal/types"
)

// Metrics records service-level measurements. Implementations must not
// block callers on failure; errors are logged and dropped.
type Metrics interface {
	RecordFeedRefresh(ctx context.Context, provider string, result types.FeedResult)
	RecordPrediction(ctx context.Context, duration time.Duration, horizon int)
}

// NoopMetrics discards everything. Used when CloudWatch is disabled and in
// tests.
type NoopMetrics struct{}

func (NoopMetrics) RecordFeedRefresh(context.Context, string, types.FeedResult) {}
func (NoopMetrics) RecordPrediction(context.Context, time.Duration, int)        {}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var _ Metrics = (*CloudWatchMetrics)(nil)

// CloudWatchMetrics emits:
//   - FeedRefresh: Dims {Provider, Result} on every weather/holiday refresh
//   - PredictionLatency: milliseconds per horizon request
//   - PredictionHorizon: requested hours per horizon request
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchMetrics creates a publisher for the given namespace. An empty
// namespace uses types.MetricNamespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordFeedRefresh emits a FeedRefresh count.
func (m *CloudWatchMetrics) RecordFeedRefresh(ctx context.Context, provider string, result types.FeedResult) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricFeedRefresh),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimProvider), Value: aws.String(provider)},
					{Name: aws.String(types.DimResult), Value: aws.String(string(result))},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record feed refresh metric",
			"error", err.Error(),
			"provider", provider,
			"result", string(result),
		)
	}
}

// RecordPrediction emits latency and horizon for one prediction request.
func (m *CloudWatchMetrics) RecordPrediction(ctx context.Context, duration time.Duration, horizon int) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricPredictionLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
			},
			{
				MetricName: aws.String(types.MetricPredictionHorizon),
				Value:      aws.Float64(float64(horizon)),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record prediction metric",
			"error", err.Error(),
			"duration_ms", duration.Milliseconds(),
			"horizon", horizon,
		)
	}
}
