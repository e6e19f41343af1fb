package roadmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyHealth(t *testing.T) {
	tests := []struct {
		name           string
		completion     float64
		elapsed        float64
		daysRemaining  int
		remainingItems int
		want           Health
	}{
		{"overdue and done", 100, 120, -3, -1, HealthOnTrack},
		{"overdue and not done", 80, 120, -1, -1, HealthBehind},
		{"complete long before deadline", 100, 10, 90, -1, HealthOnTrack},
		{"incomplete inside warning window", 60, 50, 5, -1, HealthBehind},
		{"incomplete on warning boundary", 99, 50, 7, -1, HealthBehind},
		{"unstarted beyond planning horizon", 0, 5, 61, -1, HealthOnTrack},
		{"unstarted at planning horizon falls through", 0, 80, 60, -1, HealthAtRisk},
		{"enough days for remaining items", 20, 80, 30, 10, HealthOnTrack},
		{"too few days for remaining items", 20, 25, 10, 20, HealthOnTrack},
		{"well ahead of schedule", 80, 40, 20, -1, HealthAhead},
		{"lagging the clock", 30, 50, 20, -1, HealthAtRisk},
		{"tracking the clock", 50, 55, 20, -1, HealthOnTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHealth(tt.completion, tt.elapsed, tt.daysRemaining, tt.remainingItems)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyHealthCompleteIsAlwaysOnTrack(t *testing.T) {
	// Completion at or over 100 wins regardless of every other input.
	for _, elapsed := range []float64{0, 50, 100, 250} {
		for _, days := range []int{-30, -1, 0, 3, 7, 61, 365} {
			for _, remaining := range []int{-1, 0, 5} {
				require.Equal(t, HealthOnTrack, ClassifyHealth(100, elapsed, days, remaining),
					"elapsed=%v days=%d remaining=%d", elapsed, days, remaining)
				require.Equal(t, HealthOnTrack, ClassifyHealth(130, elapsed, days, remaining))
			}
		}
	}
}

func TestClassifyHealthOverdueIncompleteIsAlwaysBehind(t *testing.T) {
	for _, completion := range []float64{0, 25, 99.9} {
		for _, days := range []int{-1, -10, -100} {
			require.Equal(t, HealthBehind, ClassifyHealth(completion, 100, days, -1),
				"completion=%v days=%d", completion, days)
		}
	}
}

func TestClassifyHealthVelocityCheck(t *testing.T) {
	// 10 remaining items need 12 days of slack-adjusted runway.
	require.Equal(t, HealthOnTrack, ClassifyHealth(50, 90, 12, 10))
	// At 11 days the velocity rule does not fire and the elapsed comparison
	// takes over: 50 - 90 is far below the at-risk margin.
	require.Equal(t, HealthAtRisk, ClassifyHealth(50, 90, 11, 10))
}
