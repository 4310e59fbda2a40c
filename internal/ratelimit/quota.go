package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Decision is the result of a quota check.
type Decision struct {
	Allowed   bool
	Count     int64
	Limit     int64
	Window    time.Duration
	Remaining int64
}

// Quota caps how many requests a client may make within a sliding window.
// Unlike Guard it counts requests instead of timing them, so it bounds
// sustained load rather than bursts.
type Quota struct {
	store  Store
	name   string
	limit  int64
	window time.Duration
}

// NewQuota creates a sliding window quota. name namespaces the store keys so
// several quotas can share one store.
func NewQuota(store Store, name string, limit int64, window time.Duration) *Quota {
	return &Quota{
		store:  store,
		name:   name,
		limit:  limit,
		window: window,
	}
}

// Allow records a request for client and reports whether it fits the quota.
func (q *Quota) Allow(ctx context.Context, client string) (Decision, error) {
	key := fmt.Sprintf("quota:%s:%s:%d", q.name, client, q.window.Milliseconds())

	count, err := q.store.Record(ctx, key, q.window)
	if err != nil {
		return Decision{}, fmt.Errorf("record quota hit: %w", err)
	}

	return Decision{
		Allowed:   count <= q.limit,
		Count:     count,
		Limit:     q.limit,
		Window:    q.window,
		Remaining: max(q.limit-count, 0),
	}, nil
}
