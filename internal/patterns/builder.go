package patterns

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	topDongLimit     = 30
	peakHourLimit    = 5
	busiestDayLimit  = 3
	highlightDongs   = 10
	unknownDongLabel = "기타"
)

var dayNames = [7]string{"월", "화", "수", "목", "금", "토", "일"}

// ErrNoRecords is returned by Build when nothing was added.
var ErrNoRecords = errors.New("patterns: no enforcement records")

// Record is one row of the enforcement dataset.
type Record struct {
	Date     string // YYYY-MM-DD
	Time     string // HH:MM or HHMM
	Dong     string // may be empty
	Location string // free-text place, used when Dong is empty
}

// counter keeps counts together with first-seen order so that ties sort the
// same way on every run.
type counter[K comparable] struct {
	counts map[K]int
	order  []K
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]int)}
}

func (c *counter[K]) inc(k K) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

func (c *counter[K]) max() int {
	m := 0
	for _, v := range c.counts {
		if v > m {
			m = v
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

// ranked returns keys by descending count, ties in first-seen order.
func (c *counter[K]) ranked() []K {
	keys := append([]K(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	return keys
}

// Builder accumulates enforcement records into a Summary. It is not safe
// for concurrent use.
type Builder struct {
	total      int
	hourly     *counter[int]
	daily      *counter[int]
	monthly    *counter[int]
	byDong     *counter[string]
	dongHourly map[string]map[string]int
	dongDaily  map[string]map[string]int
	firstDate  string
	lastDate   string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		hourly:     newCounter[int](),
		daily:      newCounter[int](),
		monthly:    newCounter[int](),
		byDong:     newCounter[string](),
		dongHourly: make(map[string]map[string]int),
		dongDaily:  make(map[string]map[string]int),
	}
}

// Add counts one record. Unparseable dates and times are tolerated: the
// record still contributes to the total and to whatever fields did parse.
func (b *Builder) Add(rec Record) {
	b.total++

	date := strings.TrimSpace(rec.Date)
	weekday, month := -1, -1
	if t, err := time.Parse("2006-01-02", date); err == nil {
		weekday = (int(t.Weekday()) + 6) % 7
		month = int(t.Month())
		b.daily.inc(weekday)
		b.monthly.inc(month)
	}
	if date != "" {
		if b.firstDate == "" || date < b.firstDate {
			b.firstDate = date
		}
		if date > b.lastDate {
			b.lastDate = date
		}
	}

	hour := parseHour(rec.Time)
	if hour >= 0 && hour <= 23 {
		b.hourly.inc(hour)
	}

	dong := strings.TrimSpace(rec.Dong)
	if dong == "" {
		dong = dongFromPlace(rec.Location)
	}
	b.byDong.inc(dong)
	if hour >= 0 && hour <= 23 {
		bump(b.dongHourly, dong, strconv.Itoa(hour))
	}
	if weekday >= 0 {
		bump(b.dongDaily, dong, strconv.Itoa(weekday))
	}
}

// Total returns the number of records added.
func (b *Builder) Total() int {
	return b.total
}

// Build normalizes the counts into a Summary.
func (b *Builder) Build() (*Summary, error) {
	if b.total == 0 {
		return nil, ErrNoRecords
	}

	s := &Summary{
		TotalCount: b.total,
		DateRange:  DateRange{Start: b.firstDate, End: b.lastDate},
		Hourly:     make(map[string]Bucket, 24),
		Daily:      make(map[string]Bucket, 7),
		Monthly:    make(map[string]Bucket, 12),
		ByDong:     make(map[string]DongBucket, topDongLimit),
	}

	hourlyMax := b.hourly.max()
	for h := 0; h < 24; h++ {
		c := b.hourly.counts[h]
		s.Hourly[strconv.Itoa(h)] = Bucket{Count: c, Weight: ratio(c, hourlyMax)}
	}

	dailyMax := b.daily.max()
	for d := 0; d < 7; d++ {
		c := b.daily.counts[d]
		s.Daily[strconv.Itoa(d)] = Bucket{Name: dayNames[d], Count: c, Weight: ratio(c, dailyMax)}
	}

	monthlyMax := b.monthly.max()
	for m := 1; m <= 12; m++ {
		c := b.monthly.counts[m]
		s.Monthly[strconv.Itoa(m)] = Bucket{Count: c, Weight: ratio(c, monthlyMax)}
	}

	dongs := b.byDong.ranked()
	if len(dongs) > topDongLimit {
		dongs = dongs[:topDongLimit]
	}
	for _, name := range dongs {
		c := b.byDong.counts[name]
		s.ByDong[name] = DongBucket{
			Count:  c,
			Weight: ratio(c, b.byDong.counts[dongs[0]]),
			Hourly: b.dongHourly[name],
			Daily:  b.dongDaily[name],
		}
	}

	s.Weights.PeakHours = head(b.hourly.ranked(), peakHourLimit)
	for _, d := range head(b.daily.ranked(), busiestDayLimit) {
		s.Weights.BusiestDays = append(s.Weights.BusiestDays, [2]int{d, b.daily.counts[d]})
	}
	s.Weights.TopDongs = head(dongs, highlightDongs)

	return s, nil
}

// parseHour reads the hour from "HH:MM" or "HHMM". It returns -1 when the
// value cannot be read.
func parseHour(raw string) int {
	raw = strings.TrimSpace(raw)
	var part string
	switch {
	case strings.Contains(raw, ":"):
		part = raw[:strings.Index(raw, ":")]
	case len(raw) >= 2:
		part = raw[:2]
	default:
		return -1
	}
	h, err := strconv.Atoi(strings.TrimSpace(part))
	if err != nil {
		return -1
	}
	return h
}

// dongFromPlace extracts the neighborhood from an enforcement place such as
// "구성동 460-6". Places without one are grouped under "기타".
func dongFromPlace(place string) string {
	parts := strings.Fields(place)
	if len(parts) == 0 {
		return unknownDongLabel
	}
	if strings.HasSuffix(parts[0], "동") {
		return parts[0]
	}
	for _, p := range parts {
		if strings.HasSuffix(p, "동") && utf8.RuneCountInString(p) >= 2 {
			return p
		}
	}
	return unknownDongLabel
}

func bump(m map[string]map[string]int, outer, inner string) {
	row, ok := m[outer]
	if !ok {
		row = make(map[string]int)
		m[outer] = row
	}
	row[inner]++
}

func ratio(count, max int) float64 {
	if max <= 0 {
		return 0
	}
	return round3(float64(count) / float64(max))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
