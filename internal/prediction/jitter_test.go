package prediction

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitter_RangeAndDeterminism(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("P%d", 1000+i)
		for hour := 0; hour < 24; hour++ {
			j := Jitter(id, hour)
			assert.GreaterOrEqual(t, j, -5.0)
			assert.Less(t, j, 5.0)
			assert.Equal(t, j, Jitter(id, hour))
		}
	}
}

func TestJitter_VariesByInput(t *testing.T) {
	seen := map[float64]bool{}
	for hour := 0; hour < 24; hour++ {
		seen[Jitter("P1001", hour)] = true
	}
	assert.Greater(t, len(seen), 20)
	assert.NotEqual(t, Jitter("P1001", 9), Jitter("P1002", 9))
}

func TestWobble(t *testing.T) {
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	assert.InDelta(t, 0, Wobble(base), 1e-9)
	assert.InDelta(t, 1.5, Wobble(base.Add(15*time.Minute)), 1e-9)
	assert.InDelta(t, 0, Wobble(base.Add(30*time.Minute)), 1e-9)
	assert.InDelta(t, -1.5, Wobble(base.Add(45*time.Minute)), 1e-9)
	// Only the position within the hour matters.
	assert.InDelta(t, Wobble(base.Add(7*time.Minute)), Wobble(base.Add(3*time.Hour+7*time.Minute)), 1e-12)
}
