package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricFeedRefresh       = "FeedRefresh"
	MetricPredictionLatency = "PredictionLatency"
	MetricPredictionHorizon = "PredictionHorizon"

	// Dimension Keys
	DimProvider = "Provider"
	DimResult   = "Result"

	// Metric Namespace
	MetricNamespace = "ParkingPass"
)

// Feed names used as the Provider dimension and in log attributes.
const (
	ProviderWeather = "kma_vilage_fcst"
	ProviderHoliday = "kasi_holiday"
)

// FeedResult is the outcome of a single snapshot refresh.
type FeedResult string

const (
	FeedResultSuccess  FeedResult = "success"
	FeedResultFallback FeedResult = "fallback"
	FeedResultSkipped  FeedResult = "skipped"
)
