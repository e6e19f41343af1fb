package roadmap

import (
	"math"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
)

// Completed-state sets depend on the level of the children being rolled up.
// Feature-level completion must not count UAT sub-stages as done; leaf items
// (PBI/TBI/Bug) must.
var (
	featureCompletedStates = map[string]bool{
		"Done":   true,
		"Closed": true,
	}
	leafCompletedStates = map[string]bool{
		"UAT - Test Done": true,
		"Done":            true,
		"Closed":          true,
	}
)

// Item is the derived roadmap view of an Epic or Feature work item.
type Item struct {
	WorkItem              azdo.WorkItem   `json:"workItem"`
	CompletionPercentage  int             `json:"completionPercentage"`
	ChildCount            int             `json:"childCount"`
	CompletedCount        int             `json:"completedCount"`
	HealthStatus          Health          `json:"healthStatus"`
	DaysRemaining         int             `json:"daysRemaining"`
	TimeElapsedPercentage float64         `json:"timeElapsedPercentage"`
	Children              []azdo.WorkItem `json:"children,omitempty"`
}

// CompletedCount counts children in a completed state. The completed-state
// set is chosen by level: if any child is a Feature the stricter feature set
// applies, otherwise the leaf set.
func CompletedCount(children []azdo.WorkItem) int {
	completed := featureCompletedStates
	if !anyFeature(children) {
		completed = leafCompletedStates
	}
	n := 0
	for _, child := range children {
		if completed[child.State] {
			n++
		}
	}
	return n
}

// CompletionPercent is the rounded percentage of completed children,
// always an integer in [0,100]. No children means 0.
func CompletionPercent(children []azdo.WorkItem) int {
	if len(children) == 0 {
		return 0
	}
	return int(math.Round(float64(CompletedCount(children)) / float64(len(children)) * 100))
}

func anyFeature(children []azdo.WorkItem) bool {
	for _, child := range children {
		if child.Type == "Feature" {
			return true
		}
	}
	return false
}

// Rollup builds the derived roadmap view for a parent and its direct
// children. The target date falls back to the due date when unset; with
// neither, time-based rules are skipped and the item reports on-track.
func Rollup(parent azdo.WorkItem, children []azdo.WorkItem, now time.Time) Item {
	item := Item{
		WorkItem:             parent,
		ChildCount:           len(children),
		CompletedCount:       CompletedCount(children),
		CompletionPercentage: CompletionPercent(children),
		Children:             children,
	}

	target := parent.TargetDate
	if target == nil {
		target = parent.DueDate
	}
	if target == nil {
		item.HealthStatus = HealthOnTrack
		return item
	}

	item.DaysRemaining = DaysRemaining(*target, now)
	item.TimeElapsedPercentage = TimeElapsedPercent(parent.CreatedDate, *target, now)
	item.HealthStatus = ClassifyHealth(
		float64(item.CompletionPercentage),
		item.TimeElapsedPercentage,
		item.DaysRemaining,
		item.ChildCount-item.CompletedCount,
	)
	return item
}
