// Package patterns holds the normalized illegal-parking enforcement statistics
// used as occupancy priors, and builds them from raw enforcement records.
package patterns

// Bucket is one normalized category entry. Weight is count divided by the
// largest count in the same category, so the busiest bucket is always 1.0.
type Bucket struct {
	Name   string  `json:"name,omitempty"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// DongBucket is a neighborhood entry with its per-hour and per-weekday
// breakdown.
type DongBucket struct {
	Count  int            `json:"count"`
	Weight float64        `json:"weight"`
	Hourly map[string]int `json:"hourly,omitempty"`
	Daily  map[string]int `json:"daily,omitempty"`
}

// DateRange is the span of enforcement dates in the source data.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Highlights summarizes the busiest buckets. BusiestDays entries are
// [weekday, count] pairs.
type Highlights struct {
	PeakHours   []int    `json:"peak_hours"`
	BusiestDays [][2]int `json:"busiest_days"`
	TopDongs    []string `json:"top_dongs"`
}

// Summary is the reference dataset shape. Map keys for Hourly, Daily and
// Monthly are decimal strings ("0".."23", "0".."6" with Monday as 0,
// "1".."12").
type Summary struct {
	TotalCount int                   `json:"total_count"`
	DateRange  DateRange             `json:"date_range"`
	Hourly     map[string]Bucket     `json:"hourly"`
	Daily      map[string]Bucket     `json:"daily"`
	Monthly    map[string]Bucket     `json:"monthly,omitempty"`
	ByDong     map[string]DongBucket `json:"by_dong"`
	Weights    Highlights            `json:"weights"`
}
