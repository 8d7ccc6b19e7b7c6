package patterns

import (
	"math"
	"strconv"

	"parkingpass/internal/types"
)

// Lookup defaults used when the pattern data has no answer.
const (
	DefaultHourlyWeight   = 0.5
	DefaultDailyWeight    = 0.85
	DefaultLocationWeight = 0.5
	UnknownDongWeight     = 0.3
	NoDataConfidence      = 60.0
	BaseConfidence        = 75.0
	LargeSampleBonus      = 10.0
	LargeSampleThreshold  = 50000
	DongSampleBonus       = 8.0
	DongSampleThreshold   = 1000
	MaxConfidence         = 95.0
)

// Store is a read-only view over a Summary. A nil summary is valid and makes
// every lookup return its default. Store is safe for concurrent use because
// it is never mutated after construction.
type Store struct {
	summary *Summary
}

// NewStore wraps s. Passing nil yields a store with no pattern data.
func NewStore(s *Summary) *Store {
	return &Store{summary: s}
}

// Loaded reports whether any pattern data is present.
func (s *Store) Loaded() bool {
	return s.summary != nil
}

// TotalCount returns the number of enforcement records summarized.
func (s *Store) TotalCount() int {
	if s.summary == nil {
		return 0
	}
	return s.summary.TotalCount
}

// HourlyWeight returns the normalized weight for hour (0..23).
func (s *Store) HourlyWeight(hour int) float64 {
	if s.summary == nil || s.summary.Hourly == nil {
		return DefaultHourlyWeight
	}
	b, ok := s.summary.Hourly[strconv.Itoa(hour)]
	if !ok {
		return DefaultHourlyWeight
	}
	return b.Weight
}

// DailyWeight returns the normalized weight for weekday (0=Monday..6=Sunday).
func (s *Store) DailyWeight(weekday int) float64 {
	if s.summary == nil || s.summary.Daily == nil {
		return DefaultDailyWeight
	}
	b, ok := s.summary.Daily[strconv.Itoa(weekday)]
	if !ok {
		return DefaultDailyWeight
	}
	return b.Weight
}

// LocationWeight returns the normalized weight for a neighborhood. Unknown
// neighborhoods get a lower weight than a store without any table.
func (s *Store) LocationWeight(dong string) float64 {
	if s.summary == nil || s.summary.ByDong == nil {
		return DefaultLocationWeight
	}
	b, ok := s.summary.ByDong[dong]
	if !ok {
		return UnknownDongWeight
	}
	return b.Weight
}

// Confidence returns the confidence score for predictions in dong, in
// [60, 95].
func (s *Store) Confidence(dong string) float64 {
	if s.summary == nil {
		return NoDataConfidence
	}
	c := BaseConfidence
	if s.summary.TotalCount >= LargeSampleThreshold {
		c += LargeSampleBonus
	}
	if dong != "" {
		if b, ok := s.summary.ByDong[dong]; ok && b.Count >= DongSampleThreshold {
			c += DongSampleBonus
		}
	}
	return math.Min(MaxConfidence, c)
}

// DongCounts returns the count and weight of every neighborhood in the table.
func (s *Store) DongCounts() map[string]types.DongCount {
	if s.summary == nil {
		return nil
	}
	out := make(map[string]types.DongCount, len(s.summary.ByDong))
	for name, b := range s.summary.ByDong {
		out[name] = types.DongCount{Count: b.Count, Weight: b.Weight}
	}
	return out
}

// Summary returns the underlying dataset, or nil.
func (s *Store) Summary() *Summary {
	return s.summary
}
