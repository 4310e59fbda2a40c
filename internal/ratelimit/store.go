package ratelimit

import (
	"context"
	"time"
)

// Store records request timestamps per key.
type Store interface {
	// Record adds a request for key and returns how many requests fall within
	// the trailing window, the new one included. Expired entries are pruned.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
