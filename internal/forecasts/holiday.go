package forecasts

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"parkingpass/internal/external"
	"parkingpass/internal/telemetry"
	"parkingpass/internal/types"
)

type holidayState struct {
	day     string // KST YYYYMMDD
	holiday bool
}

// HolidayProvider answers whether the current KST day is a public holiday.
// The feed is consulted at most once per calendar day.
type HolidayProvider struct {
	feed    external.HolidayFeed
	clock   types.Clock
	logger  *slog.Logger
	metrics telemetry.Metrics

	state atomic.Pointer[holidayState]
	group singleflight.Group
}

// NewHolidayProvider creates a provider backed by feed.
func NewHolidayProvider(feed external.HolidayFeed, clock types.Clock, metrics telemetry.Metrics, logger *slog.Logger) *HolidayProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if metrics == nil {
		metrics = telemetry.NoopMetrics{}
	}
	return &HolidayProvider{
		feed:    feed,
		clock:   clock,
		logger:  logger.With("component", "holiday_provider"),
		metrics: metrics,
	}
}

// Today reports whether today (KST) is a holiday, using the cached flag when
// it was computed for the same day.
func (p *HolidayProvider) Today(ctx context.Context) bool {
	day := DayKey(p.clock.Now())
	if st := p.state.Load(); st != nil && st.day == day {
		return st.holiday
	}

	v, _, _ := p.group.Do(day, func() (any, error) {
		if st := p.state.Load(); st != nil && st.day == day {
			return st.holiday, nil
		}
		holiday := p.IsHoliday(context.WithoutCancel(ctx), p.clock.Now())
		p.state.Store(&holidayState{day: day, holiday: holiday})
		return holiday, nil
	})
	return v.(bool)
}

// IsHoliday looks up the KST date of t without touching the cache. Any feed
// failure, or no matching entry, falls back to a weekend check.
func (p *HolidayProvider) IsHoliday(ctx context.Context, t time.Time) bool {
	local := t.In(KST)
	day := local.Format("20060102")

	days, err := p.feed.RestDays(ctx, local.Year(), int(local.Month()))
	if err != nil {
		p.metrics.RecordFeedRefresh(ctx, types.ProviderHoliday, types.FeedResultFallback)
		p.logger.Log(ctx, failureLevel(err), "holiday lookup failed, using weekend check",
			"provider", types.ProviderHoliday,
			"error", err,
			"date", day,
		)
		return IsWeekend(local)
	}

	p.metrics.RecordFeedRefresh(ctx, types.ProviderHoliday, types.FeedResultSuccess)
	for _, d := range days {
		if d.LocDate == day && d.IsHoliday {
			p.logger.Info("public holiday", "date", day, "name", d.DateName)
			return true
		}
	}
	return IsWeekend(local)
}

// IsWeekend reports whether t falls on Saturday or Sunday in KST.
func IsWeekend(t time.Time) bool {
	wd := t.In(KST).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekdayIndex returns the KST weekday of t with Monday as 0 and Sunday as 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.In(KST).Weekday()) + 6) % 7
}
