// Package stats derives cycle-time and due-date analytics from work item
// revision histories.
package stats

import (
	"math"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
)

// Tracked state transitions. The scan records the first time each of these
// states appears in an item's history.
const (
	StateInProgress   = "In Progress"
	StateReadyForTest = "Ready For Test"
	StateUATReady     = "UAT - Ready For Test"
)

// CycleTime is the milestone timeline of one work item.
type CycleTime struct {
	WorkItemID int `json:"workItemId"`

	// AssignedTo is the assignee at the In Progress transition (the
	// developer); QAAssignedTo the assignee at Ready For Test (the tester).
	AssignedTo   string `json:"assignedTo,omitempty"`
	QAAssignedTo string `json:"qaAssignedTo,omitempty"`

	InProgressAt   *time.Time `json:"inProgressAt,omitempty"`
	ReadyForTestAt *time.Time `json:"readyForTestAt,omitempty"`
	UATReadyAt     *time.Time `json:"uatReadyAt,omitempty"`

	// CycleTimeDays spans from In Progress to Ready For Test;
	// QACycleTimeDays from Ready For Test to UAT - Ready For Test.
	// Whole-day ceilings; zero when either endpoint is missing.
	CycleTimeDays   int `json:"cycleTimeDays"`
	QACycleTimeDays int `json:"qaCycleTimeDays"`
}

// ExtractCycleTime scans a chronological revision history and records the
// first transition into each tracked state. An empty history is a valid
// empty result.
func ExtractCycleTime(workItemID int, revisions []azdo.Revision) CycleTime {
	ct := CycleTime{WorkItemID: workItemID}

	for _, rev := range revisions {
		switch rev.State() {
		case StateInProgress:
			if ct.InProgressAt == nil {
				at := rev.ChangedDate()
				ct.InProgressAt = &at
				ct.AssignedTo = rev.AssignedTo()
			}
		case StateReadyForTest:
			if ct.ReadyForTestAt == nil {
				at := rev.ChangedDate()
				ct.ReadyForTestAt = &at
				ct.QAAssignedTo = rev.AssignedTo()
			}
		case StateUATReady:
			if ct.UATReadyAt == nil {
				at := rev.ChangedDate()
				ct.UATReadyAt = &at
			}
		}
	}

	if ct.InProgressAt != nil && ct.ReadyForTestAt != nil {
		ct.CycleTimeDays = daysCeil(*ct.InProgressAt, *ct.ReadyForTestAt)
	}
	if ct.ReadyForTestAt != nil && ct.UATReadyAt != nil {
		ct.QACycleTimeDays = daysCeil(*ct.ReadyForTestAt, *ct.UATReadyAt)
	}
	return ct
}

func daysCeil(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
