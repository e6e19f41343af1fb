package roadmap

import (
	"math"
	"time"
)

// DaysRemaining counts calendar days from now until target. Both timestamps
// are reset to midnight before subtracting so the result only changes sign at
// midnight on the target date, never mid-day. Negative means overdue.
func DaysRemaining(target, now time.Time) int {
	loc := now.Location()
	t := atMidnight(target, loc)
	n := atMidnight(now, loc)
	// Midnights differ by a whole number of days except across DST shifts;
	// rounding absorbs the odd hour.
	return int(math.Round(t.Sub(n).Hours() / 24))
}

// TimeElapsedPercent reports how much of the span from created to target has
// passed, clamped to [0,100]. A degenerate span (target on or before created)
// counts as fully elapsed.
func TimeElapsedPercent(created, target, now time.Time) float64 {
	if !target.After(created) {
		return 100
	}
	pct := now.Sub(created).Hours() / target.Sub(created).Hours() * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func atMidnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
