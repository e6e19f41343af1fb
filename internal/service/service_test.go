package service

import (
	"context"
	"fmt"
	"time"

	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/storage"
)

// fakeTracker is an in-memory Tracker for tests.
type fakeTracker struct {
	items     map[int]azdo.WorkItem
	children  map[int][]int
	revisions map[int][]azdo.Revision

	queries []string
	queryFn func(query string) ([]int, error)

	updates map[int][]azdo.PatchOp
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		items:     make(map[int]azdo.WorkItem),
		children:  make(map[int][]int),
		revisions: make(map[int][]azdo.Revision),
		updates:   make(map[int][]azdo.PatchOp),
	}
}

func (f *fakeTracker) QueryWorkItemIDs(ctx context.Context, query string) ([]int, error) {
	f.queries = append(f.queries, query)
	if f.queryFn != nil {
		return f.queryFn(query)
	}
	ids := make([]int, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeTracker) ChildIDs(ctx context.Context, parentID int, recursive bool) ([]int, error) {
	return f.children[parentID], nil
}

func (f *fakeTracker) GetWorkItems(ctx context.Context, ids []int, fields []string) ([]azdo.WorkItem, error) {
	items := make([]azdo.WorkItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeTracker) GetWorkItem(ctx context.Context, id int) (azdo.WorkItem, error) {
	item, ok := f.items[id]
	if !ok {
		return azdo.WorkItem{}, azdo.ErrNotFound
	}
	return item, nil
}

func (f *fakeTracker) GetRevisions(ctx context.Context, id int) ([]azdo.Revision, error) {
	return f.revisions[id], nil
}

func (f *fakeTracker) UpdateWorkItem(ctx context.Context, id int, ops []azdo.PatchOp) (azdo.WorkItem, error) {
	item, ok := f.items[id]
	if !ok {
		return azdo.WorkItem{}, azdo.ErrNotFound
	}
	f.updates[id] = append(f.updates[id], ops...)
	return item, nil
}

// fakeStore is an in-memory DeploymentStore for tests.
type fakeStore struct {
	deployments []storage.Deployment
}

func (f *fakeStore) CreateDeployment(ctx context.Context, d storage.Deployment) (storage.Deployment, error) {
	if d.ID == "" {
		d.ID = fmt.Sprintf("dep-%d", len(f.deployments)+1)
	}
	if d.DeployedAt.IsZero() {
		d.DeployedAt = time.Now().UTC()
	}
	f.deployments = append(f.deployments, d)
	return d, nil
}

func (f *fakeStore) GetDeployment(ctx context.Context, id string) (storage.Deployment, error) {
	for _, d := range f.deployments {
		if d.ID == id {
			return d, nil
		}
	}
	return storage.Deployment{}, storage.ErrDeploymentNotFound
}

func (f *fakeStore) ListDeployments(ctx context.Context, environment string, limit int) ([]storage.Deployment, error) {
	var result []storage.Deployment
	for _, d := range f.deployments {
		if environment != "" && d.Environment != environment {
			continue
		}
		result = append(result, d)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func newTestService(tracker *fakeTracker, store *fakeStore, opts Options) *Service {
	if opts.Project == "" {
		opts.Project = "Dashboard"
	}
	return New(tracker, store, opts)
}
