package forecasts

import (
	"fmt"
	"time"
)

// KST is Korea Standard Time. Both external feeds are anchored to it, so all
// calendar and slot math converts explicitly instead of using time.Local.
var KST = time.FixedZone("KST", 9*60*60)

// publicationLag is subtracted before slot selection. The feed publishes a
// run about 10 minutes after its nominal time.
const publicationLag = 15 * time.Minute

// Slot identifies a forecast run by the feed's base_date and base_time
// parameters.
type Slot struct {
	Date string `json:"base_date"` // YYYYMMDD
	Time string `json:"base_time"` // HHMM
}

// IssuanceSlot returns the most recent forecast run available at t. Runs are
// issued at 02, 05, 08, 11, 14, 17, 20 and 23 KST.
func IssuanceSlot(t time.Time) Slot {
	adjusted := t.In(KST).Add(-publicationLag)

	if adjusted.Hour() < 2 {
		prev := adjusted.AddDate(0, 0, -1)
		return Slot{Date: prev.Format("20060102"), Time: "2300"}
	}

	hour := ((adjusted.Hour()-2)/3)*3 + 2
	return Slot{
		Date: adjusted.Format("20060102"),
		Time: fmt.Sprintf("%02d00", hour),
	}
}

// DayKey returns the KST calendar date of t as YYYYMMDD.
func DayKey(t time.Time) string {
	return t.In(KST).Format("20060102")
}
