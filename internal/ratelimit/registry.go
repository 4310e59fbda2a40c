package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Registry hands out one Guard per site key, creating guards lazily with
// the same mode and options.
type Registry struct {
	mu     sync.Mutex
	mode   Mode
	opts   []Option
	guards map[string]*Guard
}

// NewRegistry creates an empty registry.
func NewRegistry(mode Mode, opts ...Option) *Registry {
	return &Registry{
		mode:   mode,
		opts:   opts,
		guards: make(map[string]*Guard),
	}
}

// Get returns the guard for key, creating it on first use. A guard pruned
// after Get returns keeps forwarding its calls to the current guard for key.
func (r *Registry) Get(key string) *Guard {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.guards[key]
	if !ok {
		g = New(r.mode, r.opts...)
		g.registry = r
		g.key = key
		r.guards[key] = g
	}

	return g
}

// Call passes fn through the guard for key.
func (r *Registry) Call(key string, fn func()) {
	// Prune removes a guard in the same step that retires it, so the next
	// Get returns a live one.
	for !r.Get(key).call(fn) {
	}
}

// Prune drops guards with no open window and no pending timer, returning
// how many were removed.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0

	for key, g := range r.guards {
		if g.retireIfIdle() {
			delete(r.guards, key)

			removed++
		}
	}

	return removed
}

// Len returns the number of guards currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.guards)
}

// Run prunes idle guards every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune()
		}
	}
}
