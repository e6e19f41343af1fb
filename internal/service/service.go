// Package service owns the business flows of the dashboard: roadmap rollups,
// work item edits, revision analytics and deployment records.
package service

import (
	"context"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/config"
	"github.com/teamdash/roadmap-service/internal/roadmap"
	"github.com/teamdash/roadmap-service/internal/stats"
	"github.com/teamdash/roadmap-service/internal/storage"
)

// Tracker is the slice of the Azure DevOps client the service depends on.
type Tracker interface {
	QueryWorkItemIDs(ctx context.Context, query string) ([]int, error)
	ChildIDs(ctx context.Context, parentID int, recursive bool) ([]int, error)
	GetWorkItems(ctx context.Context, ids []int, fields []string) ([]azdo.WorkItem, error)
	GetWorkItem(ctx context.Context, id int) (azdo.WorkItem, error)
	GetRevisions(ctx context.Context, id int) ([]azdo.Revision, error)
	UpdateWorkItem(ctx context.Context, id int, ops []azdo.PatchOp) (azdo.WorkItem, error)
}

// DeploymentStore is the persistence surface for deployment records.
type DeploymentStore interface {
	CreateDeployment(ctx context.Context, d storage.Deployment) (storage.Deployment, error)
	GetDeployment(ctx context.Context, id string) (storage.Deployment, error)
	ListDeployments(ctx context.Context, environment string, limit int) ([]storage.Deployment, error)
}

type Service struct {
	tracker   Tracker
	store     DeploymentStore
	collector *stats.Collector
	rollups   *roadmap.Cache
	project   string
	teams     []config.Team
	now       func() time.Time
}

// Options configures a Service.
type Options struct {
	Project   string
	Teams     []config.Team
	BatchSize int
	CacheTTL  time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func New(tracker Tracker, store DeploymentStore, opts Options) *Service {
	if opts.BatchSize < 1 {
		opts.BatchSize = 3
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		tracker:   tracker,
		store:     store,
		collector: stats.NewCollector(tracker, opts.BatchSize),
		rollups:   roadmap.NewCache(opts.CacheTTL),
		project:   opts.Project,
		teams:     opts.Teams,
		now:       opts.Now,
	}
}
