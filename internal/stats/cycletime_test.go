package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamdash/roadmap-service/internal/azdo"
)

func revision(state string, day int, assignedTo string) azdo.Revision {
	fields := map[string]any{
		azdo.FieldState:       state,
		azdo.FieldChangedDate: time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
	if assignedTo != "" {
		fields[azdo.FieldAssignedTo] = map[string]any{"displayName": assignedTo}
	}
	return azdo.Revision{Fields: fields}
}

func TestExtractCycleTime(t *testing.T) {
	revisions := []azdo.Revision{
		revision("New", 1, ""),
		revision(StateInProgress, 5, "Alice"),
		revision(StateReadyForTest, 10, "Bob"),
		revision(StateUATReady, 12, "Bob"),
	}

	ct := ExtractCycleTime(42, revisions)

	require.Equal(t, 42, ct.WorkItemID)
	require.Equal(t, "Alice", ct.AssignedTo)
	require.Equal(t, "Bob", ct.QAAssignedTo)
	require.Equal(t, 5, ct.CycleTimeDays)
	require.Equal(t, 2, ct.QACycleTimeDays)
	require.NotNil(t, ct.InProgressAt)
	require.NotNil(t, ct.ReadyForTestAt)
	require.NotNil(t, ct.UATReadyAt)
}

func TestExtractCycleTimeRecordsFirstTransitionOnly(t *testing.T) {
	revisions := []azdo.Revision{
		revision(StateInProgress, 2, "Alice"),
		revision("New", 3, "Alice"),
		// Bounced back into In Progress later; the first timestamp wins.
		revision(StateInProgress, 8, "Carol"),
		revision(StateReadyForTest, 9, "Bob"),
	}

	ct := ExtractCycleTime(7, revisions)

	require.Equal(t, "Alice", ct.AssignedTo)
	require.Equal(t, 7, ct.CycleTimeDays)
}

func TestExtractCycleTimeEmptyHistory(t *testing.T) {
	ct := ExtractCycleTime(9, nil)

	require.Equal(t, 9, ct.WorkItemID)
	require.Nil(t, ct.InProgressAt)
	require.Zero(t, ct.CycleTimeDays)
	require.Zero(t, ct.QACycleTimeDays)
}

func TestExtractCycleTimePartialMilestones(t *testing.T) {
	revisions := []azdo.Revision{
		revision("New", 1, ""),
		revision(StateInProgress, 3, "Alice"),
	}

	ct := ExtractCycleTime(5, revisions)

	require.NotNil(t, ct.InProgressAt)
	require.Nil(t, ct.ReadyForTestAt)
	require.Zero(t, ct.CycleTimeDays)
}

func TestDaysCeilRoundsUpPartialDays(t *testing.T) {
	from := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	to := from.Add(25 * time.Hour)
	require.Equal(t, 2, daysCeil(from, to))
	require.Equal(t, 1, daysCeil(from, from.Add(time.Hour)))
	require.Equal(t, 0, daysCeil(from, from))
}
