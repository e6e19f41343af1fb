package roadmap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/teamdash/roadmap-service/internal/azdo"
)

// Cache memoizes rollups per parent ID so repeated dashboard reads do not
// recompute. An entry is replaced wholesale whenever any cached child's
// state, title or target date differs from the freshly fetched children.
type Cache struct {
	entries *gocache.Cache
}

type cacheEntry struct {
	fingerprint string
	item        Item
}

// NewCache creates a rollup cache whose entries expire after ttl regardless
// of child changes, so DaysRemaining never drifts more than ttl behind.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{entries: gocache.New(ttl, 2*ttl)}
}

// Rollup returns the cached rollup for parent when the children are
// unchanged, computing and storing a fresh one otherwise.
func (c *Cache) Rollup(parent azdo.WorkItem, children []azdo.WorkItem, now time.Time) Item {
	key := strconv.Itoa(parent.ID)
	fp := fingerprint(children)

	if v, ok := c.entries.Get(key); ok {
		if entry, ok := v.(cacheEntry); ok && entry.fingerprint == fp {
			return entry.item
		}
	}

	item := Rollup(parent, children, now)
	c.entries.Set(key, cacheEntry{fingerprint: fp, item: item}, gocache.DefaultExpiration)
	return item
}

// Invalidate drops the cached rollup for a parent, e.g. after a child was
// patched upstream.
func (c *Cache) Invalidate(parentID int) {
	c.entries.Delete(strconv.Itoa(parentID))
}

func fingerprint(children []azdo.WorkItem) string {
	var b strings.Builder
	for _, child := range children {
		target := ""
		if child.TargetDate != nil {
			target = child.TargetDate.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "%d|%s|%s|%s;", child.ID, child.State, child.Title, target)
	}
	return b.String()
}
