package prediction

import (
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	jitterSpan      = 5.0
	wobbleAmp       = 1.5
	wobblePeriodSec = 3600.0
)

// Jitter returns a reproducible offset in [-5, 5) for a facility and target
// hour. The seed is xxhash64 of the facility ID followed by the decimal hour,
// so the value is stable across processes and platforms.
func Jitter(facilityID string, hour int) float64 {
	seed := xxhash.Sum64String(facilityID + strconv.Itoa(hour))
	// Top 53 bits as a uniform float in [0, 1).
	u := float64(seed>>11) / (1 << 53)
	return -jitterSpan + 2*jitterSpan*u
}

// Wobble is a slow sinusoid over the hour of now, so repeated polling sees a
// drifting value while a fixed instant always yields the same offset.
func Wobble(now time.Time) float64 {
	sec := float64(now.Minute()*60 + now.Second())
	return wobbleAmp * math.Sin(2*math.Pi*sec/wobblePeriodSec)
}
