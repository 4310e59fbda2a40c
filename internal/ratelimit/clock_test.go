package ratelimit_test

import (
	"sync"
	"time"

	"github.com/serroba/albumkit/internal/ratelimit"
)

// manualClock is a deterministic ratelimit.Scheduler. Time only moves on Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
	// leakyStop makes Stop report success without preventing the callback,
	// which mimics a timer that already fired but whose callback has not run.
	leakyStop bool
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{}
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) ratelimit.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)

	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}

	if !t.clock.leakyStop {
		t.stopped = true
	}

	return true
}

// Now returns the elapsed virtual time.
func (c *manualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves virtual time forward by d, firing due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()

		var next *manualTimer

		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}

			if next == nil || t.at < next.at {
				next = t
			}
		}

		if next == nil {
			c.now = target
			c.mu.Unlock()

			return
		}

		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns how many timers are still scheduled.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0

	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}

	return n
}
