// Package prediction scores expected occupancy for parking facilities from
// historical enforcement patterns and live conditions.
package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"parkingpass/internal/forecasts"
	"parkingpass/internal/lots"
	"parkingpass/internal/patterns"
	"parkingpass/internal/telemetry"
	"parkingpass/internal/types"
)

// Factor weights of the combined score. They sum to 1.
const (
	WeightHourly    = 0.25
	WeightDaily     = 0.10
	WeightLocation  = 0.15
	WeightProximity = 0.15
	WeightFee       = 0.10
	WeightCapacity  = 0.10
	WeightWeather   = 0.10
	WeightHoliday   = 0.05
)

const (
	baseOccupancyFloor = 15.0
	scoreScale         = 80.0
	minOccupancy       = 5.0
	maxOccupancy       = 95.0

	// Returned for facilities missing from the registry.
	unknownOccupancy  = 50.0
	unknownConfidence = 60.0

	freeFeeWeight = 1.2
	paidFeeWeight = 0.8

	largeLotSpaces = 100
	largeLotWeight = 0.8
	smallLotWeight = 1.1

	wetIndoorWeight  = 1.2
	wetOutdoorWeight = 0.8
	dryWeight        = 1.0

	holidayWeight = 1.2
	workdayWeight = 0.9
)

// Factor names as they appear in the factor breakdown.
const (
	FactorHourly    = "hourly"
	FactorDaily     = "daily"
	FactorLocation  = "location"
	FactorProximity = "proximity"
	FactorFee       = "fee"
	FactorCapacity  = "capacity"
	FactorWeather   = "weather"
	FactorHoliday   = "holiday"
)

// Weights returns the combination weights keyed by factor name.
func Weights() map[string]float64 {
	return map[string]float64{
		FactorHourly:    WeightHourly,
		FactorDaily:     WeightDaily,
		FactorLocation:  WeightLocation,
		FactorProximity: WeightProximity,
		FactorFee:       WeightFee,
		FactorCapacity:  WeightCapacity,
		FactorWeather:   WeightWeather,
		FactorHoliday:   WeightHoliday,
	}
}

// WeatherSource supplies the current weather snapshot. It must not fail.
type WeatherSource interface {
	Current(ctx context.Context) types.WeatherSnapshot
}

// HolidaySource reports whether today is a holiday. It must not fail.
type HolidaySource interface {
	Today(ctx context.Context) bool
}

// Config tunes the engine.
type Config struct {
	// LiveWobble adds the time-of-hour sinusoid to every score. Disable it for
	// output that depends only on the target hour.
	LiveWobble bool
}

// Dependencies are the collaborators of an Engine. Proximity defaults to
// the Cheonan hotspot table, Clock to the real clock and Metrics to a no-op.
type Dependencies struct {
	Lots      *lots.Registry
	Patterns  *patterns.Store
	Proximity *ProximityScorer
	Weather   WeatherSource
	Holidays  HolidaySource
	Clock     types.Clock
	Metrics   telemetry.Metrics
}

// Factors holds the individual weights that feed one score.
type Factors struct {
	Hourly    float64
	Daily     float64
	Location  float64
	Proximity float64
	Fee       float64
	Capacity  float64
	Weather   float64
	Holiday   float64
}

// Score combines the factors with the fixed weights.
func (f Factors) Score() float64 {
	return f.Hourly*WeightHourly +
		f.Daily*WeightDaily +
		f.Location*WeightLocation +
		f.Proximity*WeightProximity +
		f.Fee*WeightFee +
		f.Capacity*WeightCapacity +
		f.Weather*WeightWeather +
		f.Holiday*WeightHoliday
}

// Map returns the breakdown keyed by factor name, rounded to 3 decimals.
func (f Factors) Map() map[string]float64 {
	return map[string]float64{
		FactorHourly:    round(f.Hourly, 3),
		FactorDaily:     round(f.Daily, 3),
		FactorLocation:  round(f.Location, 3),
		FactorProximity: round(f.Proximity, 3),
		FactorFee:       round(f.Fee, 3),
		FactorCapacity:  round(f.Capacity, 3),
		FactorWeather:   round(f.Weather, 3),
		FactorHoliday:   round(f.Holiday, 3),
	}
}

// Occupancy is a single scored instant.
type Occupancy struct {
	Rate       float64
	Confidence float64
	Factors    map[string]float64
}

// conditions are the live inputs shared by every hour of one request.
type conditions struct {
	weather types.WeatherSnapshot
	holiday bool
	now     time.Time
}

// Engine scores facilities. It holds no mutable state of its own and is safe
// for concurrent use.
type Engine struct {
	lots      *lots.Registry
	patterns  *patterns.Store
	proximity *ProximityScorer
	weather   WeatherSource
	holidays  HolidaySource
	clock     types.Clock
	metrics   telemetry.Metrics
	logger    *slog.Logger
	cfg       Config
}

// NewEngine wires an engine. Lots, Patterns, Weather and Holidays are
// required.
func NewEngine(deps Dependencies, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Proximity == nil {
		deps.Proximity = NewProximityScorer(CheonanHotspots)
	}
	if deps.Clock == nil {
		deps.Clock = types.RealClock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NoopMetrics{}
	}
	return &Engine{
		lots:      deps.Lots,
		patterns:  deps.Patterns,
		proximity: deps.Proximity,
		weather:   deps.Weather,
		holidays:  deps.Holidays,
		clock:     deps.Clock,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "prediction_engine"),
		cfg:       cfg,
	}
}

// CalculateOccupancy scores facilityID at target. Weather and holiday state
// are refreshed first if stale. Unknown facilities get a neutral 50% at
// confidence 60 with no factors.
func (e *Engine) CalculateOccupancy(ctx context.Context, facilityID string, target time.Time) Occupancy {
	c := e.refresh(ctx)
	return e.score(facilityID, target, c)
}

// GeneratePredictions scores facilityID for each of the next hoursAhead whole
// hours after now. Live conditions are refreshed once and shared by every
// hour in the horizon.
func (e *Engine) GeneratePredictions(ctx context.Context, facilityID string, hoursAhead int) []types.PredictionResult {
	start := time.Now()
	if hoursAhead <= 0 {
		return []types.PredictionResult{}
	}

	c := e.refresh(ctx)
	out := make([]types.PredictionResult, 0, hoursAhead)
	for i := 0; i < hoursAhead; i++ {
		target := c.now.Add(time.Duration(i+1) * time.Hour)
		occ := e.score(facilityID, target, c)
		out = append(out, types.PredictionResult{
			Time:          HourLabel(target),
			Target:        target,
			OccupancyRate: occ.Rate,
			Confidence:    occ.Confidence,
			Factors:       occ.Factors,
		})
	}

	e.metrics.RecordPrediction(ctx, time.Since(start), hoursAhead)
	e.logger.Debug("predictions generated",
		"parking_id", facilityID,
		"hours_ahead", hoursAhead,
		"weather", c.weather.Condition,
		"holiday", c.holiday,
	)
	return out
}

// HourLabel formats the KST hour of t as "HH:00".
func HourLabel(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.In(forecasts.KST).Hour())
}

// refresh brings weather and holiday state up to date concurrently.
func (e *Engine) refresh(ctx context.Context) conditions {
	c := conditions{now: e.clock.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.weather = e.weather.Current(gctx)
		return nil
	})
	g.Go(func() error {
		c.holiday = e.holidays.Today(gctx)
		return nil
	})
	// Both sources degrade to fallbacks instead of failing.
	_ = g.Wait()

	return c
}

func (e *Engine) score(facilityID string, target time.Time, c conditions) Occupancy {
	lot, ok := e.lots.Get(facilityID)
	if !ok {
		return Occupancy{Rate: unknownOccupancy, Confidence: unknownConfidence, Factors: map[string]float64{}}
	}

	dong := e.lots.Dong(facilityID)
	f := e.factors(lot, dong, target, c)

	rate := baseOccupancy(f) + Jitter(facilityID, target.In(forecasts.KST).Hour())
	if e.cfg.LiveWobble {
		rate += Wobble(c.now)
	}
	rate = math.Max(minOccupancy, math.Min(maxOccupancy, rate))

	return Occupancy{
		Rate:       round(rate, 1),
		Confidence: round(e.patterns.Confidence(dong), 1),
		Factors:    f.Map(),
	}
}

func (e *Engine) factors(lot types.ParkingLot, dong string, target time.Time, c conditions) Factors {
	local := target.In(forecasts.KST)
	return Factors{
		Hourly:    e.patterns.HourlyWeight(local.Hour()),
		Daily:     e.patterns.DailyWeight(forecasts.WeekdayIndex(local)),
		Location:  e.patterns.LocationWeight(dong),
		Proximity: e.proximity.Weight(lot.Latitude, lot.Longitude),
		Fee:       feeWeight(lot.Fee.Type),
		Capacity:  capacityWeight(lot.TotalSpaces),
		Weather:   weatherWeight(c.weather, lot.ParkingType),
		Holiday:   holidayFactor(c.holiday),
	}
}

// baseOccupancy maps the combined score onto the percentage scale before
// jitter and clamping.
func baseOccupancy(f Factors) float64 {
	return baseOccupancyFloor + f.Score()*scoreScale
}

func feeWeight(t types.FeeType) float64 {
	if t.IsFree() {
		return freeFeeWeight
	}
	return paidFeeWeight
}

func capacityWeight(spaces int) float64 {
	if spaces >= largeLotSpaces {
		return largeLotWeight
	}
	return smallLotWeight
}

// weatherWeight favors attached (indoor) structures in rain or snow.
func weatherWeight(w types.WeatherSnapshot, parkingType string) float64 {
	if !w.IsWet() {
		return dryWeight
	}
	if types.IsIndoor(parkingType) {
		return wetIndoorWeight
	}
	return wetOutdoorWeight
}

func holidayFactor(holiday bool) float64 {
	if holiday {
		return holidayWeight
	}
	return workdayWeight
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
