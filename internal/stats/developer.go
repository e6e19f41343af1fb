package stats

import (
	"math"
	"sort"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
)

var completedStates = map[string]bool{
	"UAT - Test Done": true,
	"Done":            true,
	"Closed":          true,
}

// ItemOutcome bundles everything known about one work item's due-date
// discipline: the item itself plus its derived history analytics.
type ItemOutcome struct {
	WorkItem       azdo.WorkItem   `json:"workItem"`
	CycleTime      CycleTime       `json:"cycleTime"`
	DueDateChanges []DueDateChange `json:"dueDateChanges,omitempty"`
}

// DeveloperStats are the per-developer due-date totals.
type DeveloperStats struct {
	Developer       string         `json:"developer"`
	TotalWorkItems  int            `json:"totalWorkItems"`
	HitDueDate      int            `json:"hitDueDate"`
	MissedDueDate   int            `json:"missedDueDate"`
	InProgress      int            `json:"inProgress"`
	DueDateChanges  int            `json:"dueDateChanges"`
	ReasonBreakdown map[string]int `json:"reasonBreakdown,omitempty"`
	HitRatePercent  float64        `json:"hitRatePercent"`
}

// PerDeveloper reduces item outcomes into per-developer totals.
//
// Hit: completed on or before the due date with zero due-date changes.
// Miss: the due date was ever changed, the item completed late, or the due
// date has passed without completion. In-progress items with a future due
// date count toward the total but neither bucket. Items without a due date
// are not counted at all.
func PerDeveloper(items []ItemOutcome, now time.Time) []DeveloperStats {
	byDev := make(map[string]*DeveloperStats)

	for _, item := range items {
		if item.WorkItem.DueDate == nil {
			continue
		}

		dev := item.CycleTime.AssignedTo
		if dev == "" {
			dev = item.WorkItem.AssignedTo
		}
		if dev == "" {
			dev = "Unassigned"
		}

		ds, ok := byDev[dev]
		if !ok {
			ds = &DeveloperStats{Developer: dev, ReasonBreakdown: make(map[string]int)}
			byDev[dev] = ds
		}

		ds.TotalWorkItems++
		ds.DueDateChanges += len(item.DueDateChanges)
		for _, change := range item.DueDateChanges {
			ds.ReasonBreakdown[change.Reason]++
		}

		due := *item.WorkItem.DueDate
		completed := completedStates[item.WorkItem.State]

		switch {
		case len(item.DueDateChanges) > 0:
			ds.MissedDueDate++
		case completed && !completionDate(item.WorkItem).After(endOfDay(due)):
			ds.HitDueDate++
		case completed:
			ds.MissedDueDate++
		case endOfDay(due).Before(now):
			// Overdue without completion.
			ds.MissedDueDate++
		default:
			ds.InProgress++
		}
	}

	result := make([]DeveloperStats, 0, len(byDev))
	for _, ds := range byDev {
		if ds.TotalWorkItems > 0 {
			ds.HitRatePercent = round2(float64(ds.HitDueDate) / float64(ds.TotalWorkItems) * 100)
		}
		result = append(result, *ds)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Developer < result[j].Developer })
	return result
}

// completionDate prefers the QA-complete custom field, falling back to the
// last change timestamp.
func completionDate(item azdo.WorkItem) time.Time {
	if item.QACompleteDate != nil {
		return *item.QACompleteDate
	}
	return item.ChangedDate
}

// endOfDay treats "due on the 5th" as "due by the end of the 5th".
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
