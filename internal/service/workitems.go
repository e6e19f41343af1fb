package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/stats"
)

// ListWorkItemsQuery filters the work item listing.
type ListWorkItemsQuery struct {
	Type     string
	AreaPath string
	From     *time.Time
	To       *time.Time
}

// GetWorkItem fetches one work item.
func (s *Service) GetWorkItem(ctx context.Context, id int) (azdo.WorkItem, error) {
	return s.tracker.GetWorkItem(ctx, id)
}

// ListWorkItems runs a filtered WIQL query and fetches the matches.
func (s *Service) ListWorkItems(ctx context.Context, q ListWorkItemsQuery) ([]azdo.WorkItem, error) {
	query := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s'",
		azdo.EscapeWIQL(s.project),
	)
	if q.Type != "" {
		query += fmt.Sprintf(" AND [System.WorkItemType] = '%s'", azdo.EscapeWIQL(q.Type))
	}
	if q.AreaPath != "" {
		query += fmt.Sprintf(" AND [System.AreaPath] UNDER '%s'", azdo.EscapeWIQL(q.AreaPath))
	}
	if q.From != nil {
		query += fmt.Sprintf(" AND [System.ChangedDate] >= '%s'", q.From.Format("2006-01-02"))
	}
	if q.To != nil {
		query += fmt.Sprintf(" AND [System.ChangedDate] <= '%s'", q.To.Format("2006-01-02"))
	}
	query += " ORDER BY [System.ChangedDate] DESC"

	ids, err := s.tracker.QueryWorkItemIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.tracker.GetWorkItems(ctx, ids, roadmapFields)
}

// UpdateDueDate patches a work item's due date. An empty dueDate clears the
// field. When a reason is given it is written both to the custom reason
// field and to the history comment in the format the analytics fallback
// parser understands.
func (s *Service) UpdateDueDate(ctx context.Context, id int, dueDate, reason string) (azdo.WorkItem, error) {
	var ops []azdo.PatchOp
	if dueDate == "" {
		ops = append(ops, azdo.RemoveField(azdo.FieldDueDate))
	} else {
		parsed, err := time.Parse("2006-01-02", dueDate)
		if err != nil {
			return azdo.WorkItem{}, apperr.New(http.StatusBadRequest, "INVALID_DATE", fmt.Sprintf("dueDate must be YYYY-MM-DD, got %q", dueDate))
		}
		ops = append(ops, azdo.AddField(azdo.FieldDueDate, parsed.Format("2006-01-02T15:04:05Z")))
	}
	if reason != "" {
		ops = append(ops,
			azdo.AddField(azdo.FieldDueDateChangeReason, reason),
			azdo.AddField(azdo.FieldHistory, "Due date change reason: "+reason),
		)
	}
	return s.tracker.UpdateWorkItem(ctx, id, ops)
}

// UpdateFields patches arbitrary mapped fields. Keys are friendly names from
// the fixed field dictionary; a nil value removes the field.
func (s *Service) UpdateFields(ctx context.Context, id int, fields map[string]any) (azdo.WorkItem, error) {
	if len(fields) == 0 {
		return azdo.WorkItem{}, apperr.New(http.StatusBadRequest, "NO_FIELDS", "at least one field is required")
	}
	ops := make([]azdo.PatchOp, 0, len(fields))
	for friendly, value := range fields {
		ref, err := azdo.FieldRefName(friendly)
		if err != nil {
			return azdo.WorkItem{}, apperr.New(http.StatusBadRequest, "UNKNOWN_FIELD", err.Error())
		}
		if value == nil {
			ops = append(ops, azdo.RemoveField(ref))
		} else {
			ops = append(ops, azdo.AddField(ref, value))
		}
	}
	return s.tracker.UpdateWorkItem(ctx, id, ops)
}

// UpdateState transitions a work item to a new state.
func (s *Service) UpdateState(ctx context.Context, id int, state string) (azdo.WorkItem, error) {
	if state == "" {
		return azdo.WorkItem{}, apperr.New(http.StatusBadRequest, "MISSING_STATE", "state is required")
	}
	return s.tracker.UpdateWorkItem(ctx, id, []azdo.PatchOp{
		azdo.AddField(azdo.FieldState, state),
	})
}

// DueDateHistory derives the due-date change list of one work item from its
// revision history. No revisions means no changes.
func (s *Service) DueDateHistory(ctx context.Context, id int) ([]stats.DueDateChange, error) {
	revisions, err := s.tracker.GetRevisions(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := stats.ExtractDueDateChanges(revisions)
	if changes == nil {
		changes = []stats.DueDateChange{}
	}
	return changes, nil
}
