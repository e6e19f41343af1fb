package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teamdash/roadmap-service/internal/apperr"
	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/roadmap"
)

// roadmapFields is what roadmap views fetch for parents and children.
var roadmapFields = []string{
	azdo.FieldTitle,
	azdo.FieldState,
	azdo.FieldWorkItemType,
	azdo.FieldAssignedTo,
	azdo.FieldCreatedDate,
	azdo.FieldChangedDate,
	azdo.FieldDueDate,
	azdo.FieldTargetDate,
	azdo.FieldQACompleteDate,
	azdo.FieldAreaPath,
	azdo.FieldIterationPath,
	azdo.FieldTags,
}

// ListRoadmap returns rollups for every Epic or Feature matching the filter,
// without the child lists (the detail endpoint carries those).
func (s *Service) ListRoadmap(ctx context.Context, itemType, areaPath string) ([]roadmap.Item, error) {
	switch itemType {
	case "":
		itemType = "Epic"
	case "Epic", "Feature":
	default:
		return nil, apperr.New(http.StatusBadRequest, "INVALID_TYPE", fmt.Sprintf("roadmap type must be Epic or Feature, got %q", itemType))
	}

	query := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s' AND [System.WorkItemType] = '%s'",
		azdo.EscapeWIQL(s.project), itemType,
	)
	if areaPath != "" {
		query += fmt.Sprintf(" AND [System.AreaPath] UNDER '%s'", azdo.EscapeWIQL(areaPath))
	}
	query += " ORDER BY [System.ChangedDate] DESC"

	ids, err := s.tracker.QueryWorkItemIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	parents, err := s.tracker.GetWorkItems(ctx, ids, roadmapFields)
	if err != nil {
		return nil, err
	}

	items := make([]roadmap.Item, 0, len(parents))
	for _, parent := range parents {
		item, err := s.rollupOne(ctx, parent)
		if err != nil {
			return nil, err
		}
		item.Children = nil
		items = append(items, item)
	}
	return items, nil
}

// GetRoadmapItem returns the rollup for one Epic or Feature including its
// direct children.
func (s *Service) GetRoadmapItem(ctx context.Context, id int) (roadmap.Item, error) {
	parent, err := s.tracker.GetWorkItem(ctx, id)
	if err != nil {
		return roadmap.Item{}, err
	}
	return s.rollupOne(ctx, parent)
}

// rollupOne fetches direct children and computes the rollup through the
// cache. An item with no children is a valid empty rollup, not an error.
func (s *Service) rollupOne(ctx context.Context, parent azdo.WorkItem) (roadmap.Item, error) {
	childIDs, err := s.tracker.ChildIDs(ctx, parent.ID, false)
	if err != nil {
		return roadmap.Item{}, err
	}
	children, err := s.tracker.GetWorkItems(ctx, childIDs, roadmapFields)
	if err != nil {
		return roadmap.Item{}, err
	}
	return s.rollups.Rollup(parent, children, s.now()), nil
}
