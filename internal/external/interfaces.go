package external

import "context"

// ForecastFeed abstracts the short-term forecast service (VilageFcst).
type ForecastFeed interface {
	// VilageForecast fetches the run identified by baseDate/baseTime for grid
	// cell (nx, ny) and returns the categories of its earliest forecast hour.
	VilageForecast(ctx context.Context, baseDate, baseTime string, nx, ny int) (*VilageForecast, error)
}

// HolidayFeed abstracts the special-day information service (SpcdeInfo).
type HolidayFeed interface {
	// RestDays lists the public rest days of the given solar month.
	RestDays(ctx context.Context, year, month int) ([]RestDay, error)
}

// Forecast categories of the short-term forecast feed.
const (
	CategoryTemperature  = "TMP"
	CategoryPrecipProb   = "POP"
	CategoryPrecipType   = "PTY"
	CategorySkyCondition = "SKY"
)

// VilageForecast holds the category values of a single forecast hour.
type VilageForecast struct {
	FcstDate string
	FcstTime string
	Values   map[string]string
}

// RestDay is a single entry of the special-day feed.
type RestDay struct {
	LocDate   string // YYYYMMDD
	DateName  string
	IsHoliday bool
}
