package service

import (
	"context"
	"fmt"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/config"
	"github.com/teamdash/roadmap-service/internal/logging"
	"github.com/teamdash/roadmap-service/internal/stats"
)

// TeamDueDateStats is the per-team slice of the due-date report.
type TeamDueDateStats struct {
	Team       string                 `json:"team"`
	Developers []stats.DeveloperStats `json:"developers"`
}

// leafTypes are the work item types due-date and cycle-time stats run over.
var leafTypes = []string{"Product Backlog Item", "Technical Backlog Item", "Bug"}

// DueDateStats aggregates per-developer due-date discipline for every
// configured team. A team whose query fails is logged and skipped; the call
// errors only when every team failed. With no teams configured the whole
// project is treated as one unnamed team.
func (s *Service) DueDateStats(ctx context.Context, from, to *time.Time) ([]TeamDueDateStats, error) {
	teams := s.teams
	if len(teams) == 0 {
		teams = []config.Team{{Name: "All"}}
	}

	results := make([]TeamDueDateStats, 0, len(teams))
	var lastErr error
	for _, team := range teams {
		developers, err := s.teamDueDateStats(ctx, team, from, to)
		if err != nil {
			logging.Warn("skipping team after stats failure",
				"team", team.Name,
				"error", err.Error(),
			)
			lastErr = err
			continue
		}
		results = append(results, TeamDueDateStats{Team: team.Name, Developers: developers})
	}
	if len(results) == 0 && lastErr != nil {
		return nil, fmt.Errorf("due-date stats failed for every team: %w", lastErr)
	}
	return results, nil
}

func (s *Service) teamDueDateStats(ctx context.Context, team config.Team, from, to *time.Time) ([]stats.DeveloperStats, error) {
	items, err := s.queryLeafItems(ctx, team.AreaPath, from, to, true)
	if err != nil {
		return nil, err
	}
	outcomes, err := s.collector.Outcomes(ctx, items)
	if err != nil {
		return nil, err
	}
	return stats.PerDeveloper(outcomes, s.now()), nil
}

// CycleTimeStats computes cycle times for every leaf item matching the
// filter.
func (s *Service) CycleTimeStats(ctx context.Context, areaPath string, from, to *time.Time) ([]stats.CycleTime, error) {
	items, err := s.queryLeafItems(ctx, areaPath, from, to, false)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	cycleTimes, err := s.collector.CycleTimes(ctx, ids)
	if err != nil {
		return nil, err
	}
	if cycleTimes == nil {
		cycleTimes = []stats.CycleTime{}
	}
	return cycleTimes, nil
}

func (s *Service) queryLeafItems(ctx context.Context, areaPath string, from, to *time.Time, requireDueDate bool) ([]azdo.WorkItem, error) {
	query := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s' AND [System.WorkItemType] IN (%s)",
		azdo.EscapeWIQL(s.project), wiqlTypeList(leafTypes),
	)
	if areaPath != "" {
		query += fmt.Sprintf(" AND [System.AreaPath] UNDER '%s'", azdo.EscapeWIQL(areaPath))
	}
	if requireDueDate {
		query += fmt.Sprintf(" AND [%s] <> ''", azdo.FieldDueDate)
	}
	if from != nil {
		query += fmt.Sprintf(" AND [System.ChangedDate] >= '%s'", from.Format("2006-01-02"))
	}
	if to != nil {
		query += fmt.Sprintf(" AND [System.ChangedDate] <= '%s'", to.Format("2006-01-02"))
	}

	ids, err := s.tracker.QueryWorkItemIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.tracker.GetWorkItems(ctx, ids, roadmapFields)
}

func wiqlTypeList(types []string) string {
	list := ""
	for i, t := range types {
		if i > 0 {
			list += ", "
		}
		list += "'" + azdo.EscapeWIQL(t) + "'"
	}
	return list
}
