// Package digest condenses album activity into per-session summaries.
package digest

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/ratelimit"
	"go.uber.org/zap"
)

// Summary is the activity of one session between two quiet periods.
type Summary struct {
	Session string
	Count   int
	Bytes   int64
	Formats map[string]int
	First   time.Time
	Last    time.Time
}

// Sink receives flushed summaries.
type Sink interface {
	Flush(ctx context.Context, summary Summary) error
}

// Digest collects saved-image events per session and flushes a summary once
// the session has been quiet for the debounce window.
type Digest struct {
	sink    Sink
	guards  *ratelimit.Registry
	logger  *zap.Logger
	mu      sync.Mutex
	batches map[string]*Summary
}

// New creates a digest. opts configure the per-session trailing debounce
// guards; the window defaults to ratelimit.DefaultWindow.
func New(sink Sink, logger *zap.Logger, opts ...ratelimit.Option) *Digest {
	return &Digest{
		sink:    sink,
		guards:  ratelimit.NewRegistry(ratelimit.ModeDebounce, opts...),
		logger:  logger,
		batches: make(map[string]*Summary),
	}
}

// Guards exposes the per-session guards so idle ones can be pruned.
func (d *Digest) Guards() *ratelimit.Registry { return d.guards }

// HandleSaved adds a saved image to its session's batch.
func (d *Digest) HandleSaved(_ context.Context, key string, event *host.ImageSavedEvent) error {
	session := key
	if session == "" {
		session = event.Session
	}

	d.mu.Lock()

	b, ok := d.batches[session]
	if !ok {
		b = &Summary{Session: session, Formats: make(map[string]int), First: event.SavedAt}
		d.batches[session] = b
	}

	b.Count++
	b.Bytes += event.Size
	b.Formats[event.Format]++
	b.Last = event.SavedAt

	d.mu.Unlock()

	d.guards.Call(session, func() {
		d.flush(session)
	})

	return nil
}

// HandleNotification logs a session notification.
func (d *Digest) HandleNotification(_ context.Context, key string, event *host.NotificationEvent) error {
	d.logger.Debug("notification",
		zap.String("session", key),
		zap.String("kind", string(event.Kind)),
		zap.String("title", event.Title),
		zap.String("icon", event.Icon),
		zap.Time("at", event.At),
	)

	return nil
}

// Close flushes every batch still waiting for its quiet period.
func (d *Digest) Close() error {
	d.mu.Lock()

	sessions := make([]string, 0, len(d.batches))
	for s := range d.batches {
		sessions = append(sessions, s)
	}

	d.mu.Unlock()

	for _, s := range sessions {
		d.flush(s)
	}

	return nil
}

func (d *Digest) flush(session string) {
	d.mu.Lock()
	b, ok := d.batches[session]
	delete(d.batches, session)
	d.mu.Unlock()

	if !ok {
		return
	}

	if err := d.sink.Flush(context.Background(), *b); err != nil {
		d.logger.Error("failed to flush digest",
			zap.String("session", session),
			zap.Int("count", b.Count),
			zap.Error(err),
		)
	}
}
