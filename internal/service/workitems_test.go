package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/azdo"
)

func TestListWorkItemsBuildsFilteredQuery(t *testing.T) {
	tracker := newFakeTracker()
	tracker.queryFn = func(string) ([]int, error) { return nil, nil }
	svc := newTestService(tracker, &fakeStore{}, Options{})

	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListWorkItems(context.Background(), ListWorkItemsQuery{
		Type:     "Bug",
		AreaPath: "Dashboard\\Payments",
		From:     &from,
		To:       &to,
	})
	require.NoError(t, err)

	query := tracker.queries[0]
	require.Contains(t, query, "[System.TeamProject] = 'Dashboard'")
	require.Contains(t, query, "[System.WorkItemType] = 'Bug'")
	require.Contains(t, query, "[System.AreaPath] UNDER 'Dashboard\\Payments'")
	require.Contains(t, query, "[System.ChangedDate] >= '2024-05-01'")
	require.Contains(t, query, "[System.ChangedDate] <= '2024-05-31'")
}

func TestUpdateDueDateWithReason(t *testing.T) {
	tracker := newFakeTracker()
	tracker.items[5] = azdo.WorkItem{ID: 5}
	svc := newTestService(tracker, &fakeStore{}, Options{})

	_, err := svc.UpdateDueDate(context.Background(), 5, "2024-06-10", "vendor delay")
	require.NoError(t, err)

	ops := tracker.updates[5]
	require.Len(t, ops, 3)
	require.Equal(t, "add", ops[0].Op)
	require.Equal(t, "/fields/"+azdo.FieldDueDate, ops[0].Path)
	require.Equal(t, "2024-06-10T00:00:00Z", ops[0].Value)
	require.Equal(t, "/fields/"+azdo.FieldDueDateChangeReason, ops[1].Path)
	require.Equal(t, "vendor delay", ops[1].Value)
	require.Equal(t, "/fields/"+azdo.FieldHistory, ops[2].Path)
	require.Equal(t, "Due date change reason: vendor delay", ops[2].Value)
}

func TestUpdateDueDateEmptyClearsField(t *testing.T) {
	tracker := newFakeTracker()
	tracker.items[5] = azdo.WorkItem{ID: 5}
	svc := newTestService(tracker, &fakeStore{}, Options{})

	_, err := svc.UpdateDueDate(context.Background(), 5, "", "")
	require.NoError(t, err)

	ops := tracker.updates[5]
	require.Len(t, ops, 1)
	require.Equal(t, "remove", ops[0].Op)
	require.Equal(t, "/fields/"+azdo.FieldDueDate, ops[0].Path)
}

func TestUpdateDueDateRejectsBadFormat(t *testing.T) {
	svc := newTestService(newFakeTracker(), &fakeStore{}, Options{})

	_, err := svc.UpdateDueDate(context.Background(), 5, "10/06/2024", "")
	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_DATE", apiErr.Code)
}

func TestUpdateFieldsMapsFriendlyNames(t *testing.T) {
	tracker := newFakeTracker()
	tracker.items[7] = azdo.WorkItem{ID: 7}
	svc := newTestService(tracker, &fakeStore{}, Options{})

	_, err := svc.UpdateFields(context.Background(), 7, map[string]any{"title": "New title"})
	require.NoError(t, err)

	ops := tracker.updates[7]
	require.Len(t, ops, 1)
	require.Equal(t, "add", ops[0].Op)
	require.Equal(t, "/fields/"+azdo.FieldTitle, ops[0].Path)
	require.Equal(t, "New title", ops[0].Value)
}

func TestUpdateFieldsNilValueRemoves(t *testing.T) {
	tracker := newFakeTracker()
	tracker.items[7] = azdo.WorkItem{ID: 7}
	svc := newTestService(tracker, &fakeStore{}, Options{})

	_, err := svc.UpdateFields(context.Background(), 7, map[string]any{"dueDate": nil})
	require.NoError(t, err)
	require.Equal(t, "remove", tracker.updates[7][0].Op)
}

func TestUpdateFieldsRejectsUnknownField(t *testing.T) {
	svc := newTestService(newFakeTracker(), &fakeStore{}, Options{})

	_, err := svc.UpdateFields(context.Background(), 7, map[string]any{"priority": 1})
	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "UNKNOWN_FIELD", apiErr.Code)
}

func TestUpdateFieldsRequiresAtLeastOne(t *testing.T) {
	svc := newTestService(newFakeTracker(), &fakeStore{}, Options{})

	_, err := svc.UpdateFields(context.Background(), 7, nil)
	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "NO_FIELDS", apiErr.Code)
}

func TestUpdateState(t *testing.T) {
	tracker := newFakeTracker()
	tracker.items[9] = azdo.WorkItem{ID: 9}
	svc := newTestService(tracker, &fakeStore{}, Options{})

	_, err := svc.UpdateState(context.Background(), 9, "Done")
	require.NoError(t, err)
	require.Equal(t, "/fields/"+azdo.FieldState, tracker.updates[9][0].Path)
	require.Equal(t, "Done", tracker.updates[9][0].Value)

	_, err = svc.UpdateState(context.Background(), 9, "")
	var apiErr *apperr.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "MISSING_STATE", apiErr.Code)
}

func TestDueDateHistory(t *testing.T) {
	tracker := newFakeTracker()
	tracker.revisions[3] = []azdo.Revision{
		{Rev: 1, Fields: map[string]any{azdo.FieldDueDate: "2024-05-01T00:00:00Z", azdo.FieldChangedDate: "2024-04-01T10:00:00Z"}},
		{Rev: 2, Fields: map[string]any{azdo.FieldDueDate: "2024-05-08T00:00:00Z", azdo.FieldChangedDate: "2024-04-05T10:00:00Z", azdo.FieldDueDateChangeReason: "vendor delay"}},
	}
	svc := newTestService(tracker, &fakeStore{}, Options{})

	changes, err := svc.DueDateHistory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, "vendor delay", changes[0].Reason)
}

func TestDueDateHistoryEmpty(t *testing.T) {
	svc := newTestService(newFakeTracker(), &fakeStore{}, Options{})

	changes, err := svc.DueDateHistory(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, changes)
	require.Empty(t, changes)
}
