package health

import (
	"context"
	"fmt"

	"github.com/surveilops/surveilops/refcontext"
)

// CacheChecker reports on a service's reference resolution cache. The
// cache cannot fail, so the check is always healthy; its value is the
// occupancy detail surfaced on the health endpoint.
type CacheChecker struct {
	name string
	rc   *refcontext.Context
}

// NewCacheChecker creates a checker for the given cache.
func NewCacheChecker(name string, rc *refcontext.Context) *CacheChecker {
	return &CacheChecker{name: name, rc: rc}
}

func (c *CacheChecker) Name() string { return c.name }

func (c *CacheChecker) Check(ctx context.Context) Result {
	snap := c.rc.Snapshot()

	lastSeen := 0
	for _, v := range snap.Last {
		if v != "" {
			lastSeen++
		}
	}

	return Healthy(fmt.Sprintf("%d queries in history", len(snap.History))).WithDetails(map[string]any{
		"history_len":   len(snap.History),
		"tracked_kinds": len(snap.Last),
		"last_seen_set": lastSeen,
	})
}
