package roadmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestDaysRemaining(t *testing.T) {
	target := date(2024, time.June, 10, 0, 0)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"week before", date(2024, time.June, 3, 12, 0), 7},
		{"last minute of day before", date(2024, time.June, 9, 23, 59), 1},
		{"midnight of target day", date(2024, time.June, 10, 0, 0), 0},
		{"last minute of target day", date(2024, time.June, 10, 23, 59), 0},
		{"just past target day", date(2024, time.June, 11, 0, 1), -1},
		{"long overdue", date(2024, time.July, 10, 9, 0), -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DaysRemaining(target, tt.now))
		})
	}
}

func TestDaysRemainingIdempotent(t *testing.T) {
	target := date(2025, time.January, 15, 8, 30)
	now := date(2025, time.January, 2, 17, 45)

	first := DaysRemaining(target, now)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, DaysRemaining(target, now))
	}
}

func TestDaysRemainingIgnoresTimeOfDay(t *testing.T) {
	now := date(2024, time.March, 1, 23, 0)

	// Any time on the target day gives the same answer.
	require.Equal(t, 4, DaysRemaining(date(2024, time.March, 5, 0, 0), now))
	require.Equal(t, 4, DaysRemaining(date(2024, time.March, 5, 23, 59), now))
}

func TestTimeElapsedPercent(t *testing.T) {
	created := date(2024, time.January, 1, 0, 0)
	target := date(2024, time.January, 11, 0, 0)

	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"halfway", date(2024, time.January, 6, 0, 0), 50},
		{"at creation", created, 0},
		{"at target", target, 100},
		{"before creation clamps to zero", date(2023, time.December, 25, 0, 0), 0},
		{"past target clamps to hundred", date(2024, time.February, 1, 0, 0), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, TimeElapsedPercent(created, target, tt.now), 0.01)
		})
	}
}

func TestTimeElapsedPercentDegenerateSpan(t *testing.T) {
	created := date(2024, time.May, 1, 0, 0)
	now := date(2024, time.May, 2, 0, 0)

	// Target on or before creation counts as fully elapsed.
	require.Equal(t, 100.0, TimeElapsedPercent(created, created, now))
	require.Equal(t, 100.0, TimeElapsedPercent(created, created.AddDate(0, 0, -3), now))
}
