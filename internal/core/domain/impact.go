package domain

import (
	"math"
	"time"
)

const millisPerDay = 24 * 60 * 60 * 1000

// DaysSince returns the number of whole 24h periods elapsed between
// stoppedAt and now, clamped at zero for stop dates in the future.
// Buckets are flat 24h: daylight-saving 23/25-hour days are not
// special-cased. Known limitation, matches the displayed counter.
func DaysSince(stoppedAt, now time.Time) int {
	diff := now.Sub(stoppedAt).Milliseconds()
	if diff < 0 {
		return 0
	}
	return int(diff / millisPerDay)
}

// UnitsAvoided is the cumulative consumption skipped since the stop
// date, rounded to the nearest integer with ties away from zero.
func UnitsAvoided(days int, previousPerDay float64) int {
	return int(math.Round(float64(days) * previousPerDay))
}
