// Package window provides the rate-window bookkeeping behind the admission
// governor. The in-memory store is the single-process default; the Redis
// store lets multiple replicas share one outbound request budget.
package window

import (
	"context"
	"time"
)

// Reservation is the outcome of one Take attempt.
type Reservation struct {
	// OK is true when a slot was consumed from the current window.
	OK bool
	// RetryAfter is how long until the window resets when OK is false.
	RetryAfter time.Duration
}

// Store tracks how many requests have started within the current window.
type Store interface {
	// Take consumes one slot if fewer than limit requests have started in the
	// current window. The slot is consumed on attempt, not on success of the
	// caller's subsequent work.
	Take(ctx context.Context, limit int, window time.Duration) (Reservation, error)
}
