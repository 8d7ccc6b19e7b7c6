// Package config defines the process configuration. Configuration is loaded
// once at startup and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> Legacy alias variables (Lowest)
//
// Any invalid value causes LoadConfig to fail; callers exit on error.
package config

import (
	"time"

	"parkingpass/internal/types"
)

// SecretString is an alias for types.SecretString so config consumers need
// not import types for secret fields.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the subsets they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"parkingpass-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Feeds         FeedsConfig
	Prediction    PredictionConfig
	Reference     ReferenceConfig
	Observability ObservabilityConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8000" validate:"required,numeric"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// FeedsConfig holds credentials and endpoints of the weather and holiday
// feeds. Keys are optional: without them the providers serve fallbacks.
type FeedsConfig struct {
	KMABaseURL     string        `envconfig:"KMA_BASE_URL" default:"http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getVilageFcst" validate:"required,url"`
	HolidayBaseURL string        `envconfig:"HOLIDAY_BASE_URL" default:"http://apis.data.go.kr/B090041/openapi/service/SpcdeInfoService/getRestDeInfo" validate:"required,url"`
	KMAAPIKey      SecretString  `envconfig:"KMA_API_KEY"`
	HolidayAPIKey  SecretString  `envconfig:"HOLIDAY_API_KEY"`
	Timeout        time.Duration `envconfig:"FEED_TIMEOUT" default:"5s" validate:"gt=0"`
	NumOfRows      int           `envconfig:"KMA_NUM_OF_ROWS" default:"1000" validate:"min=1"`
	// Reference point used for the weather grid; defaults to Cheonan city hall.
	RefLat float64 `envconfig:"WEATHER_REF_LAT" default:"36.815" validate:"latitude"`
	RefLon float64 `envconfig:"WEATHER_REF_LON" default:"127.113" validate:"longitude"`
}

// PredictionConfig tunes the prediction engine and its caches.
type PredictionConfig struct {
	WeatherTTL     time.Duration `envconfig:"WEATHER_TTL" default:"30m" validate:"gt=0"`
	DefaultHorizon int           `envconfig:"PREDICTION_DEFAULT_HORIZON" default:"24" validate:"min=1,ltefield=MaxHorizon"`
	MaxHorizon     int           `envconfig:"PREDICTION_MAX_HORIZON" default:"72" validate:"min=1"`
	LiveWobble     bool          `envconfig:"PREDICTION_LIVE_WOBBLE" default:"true"`
}

// Reference source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// ReferenceConfig selects where the facility registry and pattern summary
// are loaded from.
type ReferenceConfig struct {
	Source          string       `envconfig:"REFERENCE_SOURCE" default:"file" validate:"oneof=file postgres"`
	ParkingLotsPath string       `envconfig:"PARKING_LOTS_PATH" default:"data/parkingLots.json"`
	PatternsPath    string       `envconfig:"PATTERNS_PATH" default:"data/violationPatterns.json"`
	DatabaseURL     SecretString `envconfig:"DATABASE_URL" validate:"required_if=Source postgres"`
}

// ObservabilityConfig holds metrics settings. Prometheus metrics are served
// at GET /metrics; CloudWatch metrics are pushed.
type ObservabilityConfig struct {
	MetricNamespace  string `envconfig:"METRIC_NAMESPACE" default:"ParkingPass"`
	EnableCloudWatch bool   `envconfig:"ENABLE_CLOUDWATCH" default:"false"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	EnablePrometheus bool   `envconfig:"ENABLE_PROMETHEUS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrAliasResolution indicates a legacy alias could not be resolved.
	ErrAliasResolution ConfigErrorType = "ALIAS_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
