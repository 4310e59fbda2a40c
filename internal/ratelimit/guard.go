package ratelimit

import (
	"sync"
	"time"
)

// DefaultWindow is the cooldown used when no positive window is configured.
const DefaultWindow = 500 * time.Millisecond

// Mode selects how a Guard rate limits its callback.
type Mode int

const (
	// ModeThrottle fires at most once per window, measured from the call
	// that opened the window.
	ModeThrottle Mode = iota
	// ModeDebounce fires once per burst of calls spaced less than a window apart.
	ModeDebounce
)

func (m Mode) String() string {
	switch m {
	case ModeThrottle:
		return "throttle"
	case ModeDebounce:
		return "debounce"
	default:
		return "unknown"
	}
}

// Option configures a Guard.
type Option func(*config)

type config struct {
	window    time.Duration
	immediate *bool
	scheduler Scheduler
}

// WithWindow sets the cooldown (throttle) or silence (debounce) period.
// Non-positive values fall back to DefaultWindow.
func WithWindow(d time.Duration) Option {
	return func(c *config) {
		c.window = d
	}
}

// WithImmediate selects leading-edge (true) or trailing-edge (false) firing.
func WithImmediate(immediate bool) Option {
	return func(c *config) {
		c.immediate = &immediate
	}
}

// WithScheduler replaces the timer service.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		c.scheduler = s
	}
}

// Guard rate limits one call site. Construct it once per site and reuse it
// for every call made there; guards are safe for concurrent use.
type Guard struct {
	mu        sync.Mutex
	mode      Mode
	window    time.Duration
	immediate bool
	scheduler Scheduler

	// active is true while a throttle window is open.
	active bool
	// pending is the single scheduled timer, if any.
	pending Timer
	// gen identifies the current timer. A firing timer whose generation
	// is stale has been superseded and must do nothing.
	gen uint64

	// Guards handed out by a Registry remember it so calls on a pruned
	// guard reach the guard that replaced it.
	registry *Registry
	key      string
	retired  bool
}

// New creates a guard for the given mode. Throttle guards default to
// leading-edge firing, debounce guards to trailing-edge firing.
func New(mode Mode, opts ...Option) *Guard {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.window <= 0 {
		cfg.window = DefaultWindow
	}

	if cfg.scheduler == nil {
		cfg.scheduler = RealScheduler{}
	}

	immediate := mode == ModeThrottle
	if cfg.immediate != nil {
		immediate = *cfg.immediate
	}

	return &Guard{
		mode:      mode,
		window:    cfg.window,
		immediate: immediate,
		scheduler: cfg.scheduler,
	}
}

// NewThrottle creates a throttle guard.
func NewThrottle(opts ...Option) *Guard {
	return New(ModeThrottle, opts...)
}

// NewDebounce creates a debounce guard.
func NewDebounce(opts ...Option) *Guard {
	return New(ModeDebounce, opts...)
}

// Mode returns the guard's mode.
func (g *Guard) Mode() Mode { return g.mode }

// Window returns the guard's effective window.
func (g *Guard) Window() time.Duration { return g.window }

// Immediate reports whether the guard fires on the leading edge.
func (g *Guard) Immediate() bool { return g.immediate }

// Call records one occurrence of the guarded event. Depending on mode and
// edge, fn runs now, runs later from a timer, or is dropped. A nil fn still
// drives the timer bookkeeping but never runs anything.
func (g *Guard) Call(fn func()) {
	if g.call(fn) {
		return
	}

	g.registry.Call(g.key, fn)
}

// call reports false, without touching any state, when the guard has been
// retired by its registry.
func (g *Guard) call(fn func()) bool {
	if g.mode == ModeDebounce {
		return g.debounce(fn)
	}

	return g.throttle(fn)
}

// Wrap returns a function that passes fn through the guard on every call.
func (g *Guard) Wrap(fn func()) func() {
	return func() {
		g.Call(fn)
	}
}

// Idle reports whether the guard has no open window and no pending timer.
func (g *Guard) Idle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return !g.active && g.pending == nil
}

// retireIfIdle marks an idle guard as retired. Retired guards never open a
// window again.
func (g *Guard) retireIfIdle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active || g.pending != nil {
		return false
	}

	g.retired = true

	return true
}

func (g *Guard) throttle(fn func()) bool {
	g.mu.Lock()

	if g.retired {
		g.mu.Unlock()

		return false
	}

	if g.active {
		g.mu.Unlock()

		return true
	}

	g.active = true
	gen := g.nextGen()

	if g.immediate {
		g.pending = g.scheduler.AfterFunc(g.window, func() {
			g.expire(gen)
		})
		g.mu.Unlock()

		invoke(fn)

		return true
	}

	g.pending = g.scheduler.AfterFunc(g.window, func() {
		if g.expire(gen) {
			invoke(fn)
		}
	})
	g.mu.Unlock()

	return true
}

func (g *Guard) debounce(fn func()) bool {
	g.mu.Lock()

	if g.retired {
		g.mu.Unlock()

		return false
	}

	hadPending := g.pending != nil
	if hadPending {
		g.pending.Stop()
		g.pending = nil
	}

	gen := g.nextGen()

	if g.immediate {
		g.pending = g.scheduler.AfterFunc(g.window, func() {
			g.expire(gen)
		})
		g.mu.Unlock()

		if !hadPending {
			invoke(fn)
		}

		return true
	}

	g.pending = g.scheduler.AfterFunc(g.window, func() {
		if g.expire(gen) {
			invoke(fn)
		}
	})
	g.mu.Unlock()

	return true
}

// expire clears the window state for the timer of generation gen. It
// reports false when that timer was superseded.
func (g *Guard) expire(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen {
		return false
	}

	g.active = false
	g.pending = nil

	return true
}

func (g *Guard) nextGen() uint64 {
	g.gen++

	return g.gen
}

func invoke(fn func()) {
	if fn != nil {
		fn()
	}
}
