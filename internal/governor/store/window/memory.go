package window

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process window store. The counter advances lazily: it
// resets on the first Take after a full window has passed since the last
// recorded request, not by a background timer. Anchoring on the last request
// rather than the first keeps any trailing window at or under the limit even
// when grants are spread out.
type Memory struct {
	mu    sync.Mutex
	last  time.Time
	count int
	clock func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMemory creates an empty in-memory window store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{clock: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Take consumes one slot from the current window if the budget allows. Denied
// attempts are not recorded; only grants move the window anchor.
func (m *Memory) Take(_ context.Context, limit int, window time.Duration) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if m.count > 0 && now.Sub(m.last) > window {
		m.count = 0
	}

	if m.count < limit {
		m.count++
		m.last = now
		return Reservation{OK: true}, nil
	}

	retryAfter := m.last.Add(window).Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return Reservation{RetryAfter: retryAfter}, nil
}

// Count returns the number of slots consumed in the current window.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
