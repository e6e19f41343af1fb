package stats

import (
	"regexp"
	"strings"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
)

// UnknownReason is reported when neither the custom reason field nor the
// history fallback yields a usable reason. It is an explicit sentinel, not a
// guess.
const UnknownReason = "unknown"

// reasonPattern matches the free-text convention used when a due-date edit is
// recorded through the dashboard. The pattern is intentionally kept exactly
// as historical comments were written; changing it orphans old data.
var reasonPattern = regexp.MustCompile(`Due date change reason: (.+)`)

// DueDateChange is one observed due-date edit, derived per request from the
// revision history and never persisted.
type DueDateChange struct {
	ChangedDate time.Time `json:"changedDate"`
	ChangedBy   string    `json:"changedBy,omitempty"`
	OldDueDate  string    `json:"oldDueDate,omitempty"`
	NewDueDate  string    `json:"newDueDate,omitempty"`
	Reason      string    `json:"reason"`
}

// ExtractDueDateChanges scans consecutive revision pairs for due-date edits.
// Dates are compared on their normalized YYYY-MM-DD value. The first time a
// due date is ever assigned does not count as a change; clearing it and
// setting it again both do.
func ExtractDueDateChanges(revisions []azdo.Revision) []DueDateChange {
	var changes []DueDateChange
	everSet := false

	for i := 1; i < len(revisions); i++ {
		prev := normalizedDueDate(revisions[i-1])
		cur := normalizedDueDate(revisions[i])
		if prev != "" {
			everSet = true
		}
		if prev == cur {
			continue
		}
		if prev == "" && !everSet {
			// Initial assignment, not a change.
			everSet = true
			continue
		}

		changes = append(changes, DueDateChange{
			ChangedDate: revisions[i].ChangedDate(),
			ChangedBy:   revisions[i].ChangedBy(),
			OldDueDate:  prev,
			NewDueDate:  cur,
			Reason:      changeReason(revisions[i]),
		})
	}
	return changes
}

func normalizedDueDate(rev azdo.Revision) string {
	due, ok := rev.DueDate()
	if !ok {
		return ""
	}
	return due.Format("2006-01-02")
}

func changeReason(rev azdo.Revision) string {
	if reason := strings.TrimSpace(rev.DueDateChangeReason()); reason != "" {
		return reason
	}
	return ParseReasonFromHistory(rev.History())
}

// ParseReasonFromHistory extracts a due-date change reason from a free-text
// history comment. Best-effort: the format is a convention, not a contract,
// so anything that does not match returns UnknownReason.
func ParseReasonFromHistory(history string) string {
	match := reasonPattern.FindStringSubmatch(history)
	if match == nil {
		return UnknownReason
	}
	reason := strings.TrimSpace(match[1])
	if reason == "" {
		return UnknownReason
	}
	return reason
}
