package forecasts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"parkingpass/internal/external"
	"parkingpass/internal/telemetry"
	"parkingpass/internal/types"
)

// DefaultWeatherTTL is how long a successfully fetched snapshot is reused.
const DefaultWeatherTTL = 30 * time.Minute

// DefaultWeather is served when the feed has never succeeded.
var DefaultWeather = types.WeatherSnapshot{
	Temperature:              18,
	Condition:                types.ConditionCloudy,
	PrecipitationProbability: 20,
	Fallback:                 true,
}

// Precipitation type codes (PTY) of the short-term forecast.
var (
	rainCodes = map[int]bool{1: true, 4: true, 5: true}
	snowCodes = map[int]bool{2: true, 3: true}
)

// WeatherConfig configures a WeatherProvider.
type WeatherConfig struct {
	Lat float64
	Lon float64
	TTL time.Duration
}

// weatherState is swapped atomically as a unit. refreshedAt only advances on
// a successful fetch, so a failed refresh is retried on the next request.
type weatherState struct {
	snapshot    types.WeatherSnapshot
	refreshedAt time.Time
	ok          bool
}

// WeatherProvider caches the short-term forecast for a fixed reference point.
// It is safe for concurrent use; overlapping refreshes are collapsed into one
// feed call.
type WeatherProvider struct {
	feed    external.ForecastFeed
	clock   types.Clock
	logger  *slog.Logger
	metrics telemetry.Metrics
	grid    GridPoint
	ttl     time.Duration

	state atomic.Pointer[weatherState]
	group singleflight.Group
}

// NewWeatherProvider creates a provider for the configured reference point.
func NewWeatherProvider(
	feed external.ForecastFeed,
	cfg WeatherConfig,
	clock types.Clock,
	metrics telemetry.Metrics,
	logger *slog.Logger,
) *WeatherProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultWeatherTTL
	}
	return &WeatherProvider{
		feed:    feed,
		clock:   clock,
		logger:  logger.With("component", "weather_provider"),
		metrics: metrics,
		grid:    ToGrid(cfg.Lat, cfg.Lon),
		ttl:     cfg.TTL,
	}
}

// Current returns a fresh snapshot, refreshing inline when the cache is empty
// or older than the TTL. It never fails: feed errors yield the previous
// snapshot or DefaultWeather.
func (p *WeatherProvider) Current(ctx context.Context) types.WeatherSnapshot {
	if st := p.state.Load(); st != nil && !p.stale(st) {
		return st.snapshot
	}

	v, _, _ := p.group.Do("weather", func() (any, error) {
		// Another caller may have refreshed while we waited for the group.
		if st := p.state.Load(); st != nil && !p.stale(st) {
			return st.snapshot, nil
		}
		return p.refresh(context.WithoutCancel(ctx)), nil
	})
	return v.(types.WeatherSnapshot)
}

// Peek returns the cached snapshot without refreshing.
func (p *WeatherProvider) Peek() (types.WeatherSnapshot, bool) {
	st := p.state.Load()
	if st == nil {
		return types.WeatherSnapshot{}, false
	}
	return st.snapshot, true
}

// Grid returns the grid cell used for feed requests.
func (p *WeatherProvider) Grid() GridPoint {
	return p.grid
}

func (p *WeatherProvider) stale(st *weatherState) bool {
	if !st.ok {
		return true
	}
	return p.clock.Now().Sub(st.refreshedAt) > p.ttl
}

func (p *WeatherProvider) refresh(ctx context.Context) types.WeatherSnapshot {
	now := p.clock.Now()
	slot := IssuanceSlot(now)

	fc, err := p.feed.VilageForecast(ctx, slot.Date, slot.Time, p.grid.NX, p.grid.NY)
	if err == nil {
		var snap types.WeatherSnapshot
		snap, err = snapshotFromForecast(fc, now)
		if err == nil {
			p.state.Store(&weatherState{snapshot: snap, refreshedAt: now, ok: true})
			p.metrics.RecordFeedRefresh(ctx, types.ProviderWeather, types.FeedResultSuccess)
			p.logger.Debug("weather refreshed",
				"base_date", slot.Date,
				"base_time", slot.Time,
				"condition", snap.Condition,
				"temp", snap.Temperature,
			)
			return snap
		}
	}

	fallback := DefaultWeather
	fallback.FetchedAt = now
	prev := p.state.Load()
	if prev != nil {
		fallback = prev.snapshot
		fallback.Fallback = true
	}
	// Keep the old refreshedAt so the next request tries again.
	next := &weatherState{snapshot: fallback}
	if prev != nil {
		next.refreshedAt = prev.refreshedAt
	}
	p.state.Store(next)

	p.metrics.RecordFeedRefresh(ctx, types.ProviderWeather, types.FeedResultFallback)
	p.logger.Log(ctx, failureLevel(err), "weather refresh failed, using fallback",
		"provider", types.ProviderWeather,
		"error", err,
		"had_previous", prev != nil,
	)
	return fallback
}

// failureLevel logs a missing feed key at debug. It cannot change without a
// restart and the API warns about it once at startup.
func failureLevel(err error) slog.Level {
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Code == types.ErrCodeUpstreamCredentials {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// snapshotFromForecast maps feed categories onto a snapshot. Missing
// categories read as zero; unparsable values reject the whole response.
func snapshotFromForecast(fc *external.VilageForecast, now time.Time) (types.WeatherSnapshot, error) {
	temp, err := parseFloat(fc.Values, external.CategoryTemperature)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}
	pop, err := parseInt(fc.Values, external.CategoryPrecipProb, 0)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}
	pty, err := parseInt(fc.Values, external.CategoryPrecipType, 0)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}
	sky, err := parseInt(fc.Values, external.CategorySkyCondition, 1)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}

	return types.WeatherSnapshot{
		Temperature:              temp,
		Condition:                Condition(pty, sky),
		PrecipitationProbability: pop,
		FetchedAt:                now,
	}, nil
}

// Condition derives the coarse weather tag from the precipitation type and
// sky condition codes.
func Condition(pty, sky int) types.WeatherCondition {
	if pty > 0 {
		switch {
		case rainCodes[pty]:
			return types.ConditionRainy
		case snowCodes[pty]:
			return types.ConditionSnowy
		}
		return types.ConditionSunny
	}
	if sky > 2 {
		return types.ConditionCloudy
	}
	return types.ConditionSunny
}

func parseFloat(values map[string]string, key string) (float64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("category %s: %w", key, err)
	}
	return v, nil
}

func parseInt(values map[string]string, key string, def int) (int, error) {
	raw, ok := values[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("category %s: %w", key, err)
	}
	return v, nil
}
