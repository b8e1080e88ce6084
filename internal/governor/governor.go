// Package governor admits outbound source lookups. It enforces two
// independent limits: a rolling per-minute request budget and a cap on
// concurrent in-flight lookups. Acquire never rejects; it delays until both
// limits allow the work, or until the caller's context is done.
package governor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dossier/internal/governor/metrics"
	"dossier/internal/governor/store/window"
	"dossier/pkg/platform/audit"
)

// Config bounds how politely the engine behaves against public endpoints.
// The defaults are deliberately conservative.
type Config struct {
	// RequestsPerMinute is the rolling request budget (R).
	RequestsPerMinute int
	// MaxConcurrent is the in-flight permit cap (C).
	MaxConcurrent int
	// Window is the budget window. Only tests should shorten it.
	Window time.Duration
	// SafetyBuffer is added on top of the window reset before retrying a
	// saturated budget.
	SafetyBuffer time.Duration
}

// DefaultConfig returns the stock polite-client limits: 30 requests per
// minute, 2 concurrent, 1s safety buffer.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 30,
		MaxConcurrent:     2,
		Window:            time.Minute,
		SafetyBuffer:      time.Second,
	}
}

// AuditPublisher emits operational audit events. Optional.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type waiter struct {
	ready chan struct{}
}

// Governor is the admission gate shared by all concurrent searches. It is the
// only mutable shared state in the engine; construct one per process and
// inject it, never reach for a hidden singleton.
type Governor struct {
	cfg     Config
	windows window.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
	clock   func() time.Time

	mu       sync.Mutex
	inFlight int
	waiters  []*waiter
}

// Option configures a Governor.
type Option func(*Governor)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Governor) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Governor) { g.metrics = m }
}

// WithAudit emits a rate_window_exhausted event whenever the budget forces a
// lookup to wait out the window.
func WithAudit(publisher AuditPublisher) Option {
	return func(g *Governor) { g.audit = publisher }
}

// WithWindowStore replaces the in-memory rate window, e.g. with the Redis
// store so replicas share one budget.
func WithWindowStore(s window.Store) Option {
	return func(g *Governor) {
		if s != nil {
			g.windows = s
		}
	}
}

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(g *Governor) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// New creates a Governor. Zero config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Governor {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.SafetyBuffer < 0 {
		cfg.SafetyBuffer = def.SafetyBuffer
	}

	g := &Governor{
		cfg:   cfg,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.windows == nil {
		g.windows = window.NewMemory(window.WithClock(g.clock))
	}
	return g
}

// Acquire blocks until a rate-window slot and a concurrency permit are both
// available. The window slot is consumed before the permit, so budget is
// spent on the attempt even if the caller's work later fails. The only error
// is ctx.Err(): a caller with a background context waits indefinitely.
func (g *Governor) Acquire(ctx context.Context) error {
	start := g.clock()

	if err := g.waitWindow(ctx); err != nil {
		return err
	}
	if err := g.waitPermit(ctx); err != nil {
		return err
	}

	if g.metrics != nil {
		g.metrics.AcquiresTotal.Inc()
		g.metrics.AcquireWaitSeconds.Observe(g.clock().Sub(start).Seconds())
	}
	return nil
}

// Release returns a permit. It must be called exactly once per successful
// Acquire; the longest-waiting queued caller, if any, inherits the slot.
func (g *Governor) Release() {
	g.mu.Lock()
	if len(g.waiters) > 0 {
		// Hand the slot straight to the head of the queue. inFlight stays
		// unchanged because ownership transfers rather than freeing up.
		w := g.waiters[0]
		g.waiters = g.waiters[1:]
		g.mu.Unlock()
		close(w.ready)
		return
	}
	if g.inFlight > 0 {
		g.inFlight--
	}
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.PermitsInFlight.Dec()
	}
}

// InFlight returns the number of currently held permits.
func (g *Governor) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

func (g *Governor) waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

func (g *Governor) waitWindow(ctx context.Context) error {
	reported := false
	for {
		res, err := g.windows.Take(ctx, g.cfg.RequestsPerMinute, g.cfg.Window)
		if err != nil {
			return fmt.Errorf("rate window: %w", err)
		}
		if res.OK {
			return nil
		}

		wait := res.RetryAfter + g.cfg.SafetyBuffer
		if g.metrics != nil {
			g.metrics.WindowExhaustedTotal.Inc()
		}
		if g.audit != nil && !reported {
			reported = true
			_ = g.audit.Emit(ctx, audit.Event{
				Action: string(audit.EventRateWindowExhausted),
				Reason: fmt.Sprintf("budget of %d spent", g.cfg.RequestsPerMinute),
			})
		}
		if g.logger != nil {
			g.logger.DebugContext(ctx, "rate window exhausted, waiting",
				"retry_after", wait,
				"limit", g.cfg.RequestsPerMinute,
			)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (g *Governor) waitPermit(ctx context.Context) error {
	g.mu.Lock()
	// Newcomers queue behind existing waiters even when a slot is free, so
	// grants stay strictly FIFO.
	if g.inFlight < g.cfg.MaxConcurrent && len(g.waiters) == 0 {
		g.inFlight++
		g.mu.Unlock()
		if g.metrics != nil {
			g.metrics.PermitsInFlight.Inc()
		}
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	g.waiters = append(g.waiters, w)
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.PermitWaiters.Inc()
	}
	defer func() {
		if g.metrics != nil {
			g.metrics.PermitWaiters.Dec()
		}
	}()

	select {
	case <-w.ready:
		// Slot was transferred by Release.
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		for i, queued := range g.waiters {
			if queued == w {
				g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
				g.mu.Unlock()
				return ctx.Err()
			}
		}
		g.mu.Unlock()
		// Release already granted us the slot in the race with cancellation;
		// give it back so no permit leaks.
		g.Release()
		return ctx.Err()
	}
}
