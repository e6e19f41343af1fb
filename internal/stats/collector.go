package stats

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/logging"
)

// RevisionSource fetches one work item's revision history.
type RevisionSource interface {
	GetRevisions(ctx context.Context, id int) ([]azdo.Revision, error)
}

// Collector fans revision fetches out over many work items. Upstream rate
// limits punish large fan-outs hard, so the IDs are processed in small
// sequential batches with only the members of one batch in flight at a time.
type Collector struct {
	source    RevisionSource
	batchSize int
}

// NewCollector creates a collector. batchSize values below 1 are coerced
// to 1.
func NewCollector(source RevisionSource, batchSize int) *Collector {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Collector{source: source, batchSize: batchSize}
}

// Chunk splits ids into consecutive groups of at most size. 7 IDs at size 3
// become groups of 3, 3 and 1.
func Chunk(ids []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	var chunks [][]int
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// CycleTimes computes cycle times for every ID. A single item's failure is
// logged and skipped; the call errors only when every item failed.
func (c *Collector) CycleTimes(ctx context.Context, ids []int) ([]CycleTime, error) {
	results := make([]CycleTime, 0, len(ids))
	err := c.forEach(ctx, ids, func(id int, revisions []azdo.Revision) {
		results = append(results, ExtractCycleTime(id, revisions))
	})
	return results, err
}

// DueDateHistories computes due-date change lists for every ID, keyed by
// work item ID. Failure semantics match CycleTimes.
func (c *Collector) DueDateHistories(ctx context.Context, ids []int) (map[int][]DueDateChange, error) {
	results := make(map[int][]DueDateChange, len(ids))
	err := c.forEach(ctx, ids, func(id int, revisions []azdo.Revision) {
		results[id] = ExtractDueDateChanges(revisions)
	})
	return results, err
}

// Outcomes fetches each item's revision history and derives both its cycle
// time and its due-date change list. Failure semantics match CycleTimes.
func (c *Collector) Outcomes(ctx context.Context, items []azdo.WorkItem) ([]ItemOutcome, error) {
	byID := make(map[int]azdo.WorkItem, len(items))
	ids := make([]int, 0, len(items))
	for _, item := range items {
		byID[item.ID] = item
		ids = append(ids, item.ID)
	}

	results := make([]ItemOutcome, 0, len(items))
	err := c.forEach(ctx, ids, func(id int, revisions []azdo.Revision) {
		results = append(results, ItemOutcome{
			WorkItem:       byID[id],
			CycleTime:      ExtractCycleTime(id, revisions),
			DueDateChanges: ExtractDueDateChanges(revisions),
		})
	})
	return results, err
}

// forEach fetches revisions batch by batch and hands each item's history to
// collect. collect runs under a lock, never concurrently.
func (c *Collector) forEach(ctx context.Context, ids []int, collect func(id int, revisions []azdo.Revision)) error {
	if len(ids) == 0 {
		return nil
	}

	var (
		mu        sync.Mutex
		failures  int
		lastError error
	)

	for _, batch := range Chunk(ids, c.batchSize) {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, id := range batch {
			id := id
			group.Go(func() error {
				revisions, err := c.source.GetRevisions(groupCtx, id)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logging.Warn("skipping work item after revision fetch failure",
						"workItemId", id,
						"error", err.Error(),
					)
					failures++
					lastError = err
					return nil
				}
				collect(id, revisions)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if failures == len(ids) {
		return fmt.Errorf("every revision fetch failed (%d items): %w", failures, lastError)
	}
	return nil
}
