package window

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a window store backed by a shared Redis counter, so several
// replicas stay inside one polite-client budget together. The counter's TTL
// is refreshed on every grant, so the window expires a full duration after
// the last recorded request, matching the in-memory store's anchoring.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis creates a Redis-backed window store. key namespaces the counter so
// independent governors can share one Redis instance.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

// Take consumes one slot from the shared window if the budget allows. Each
// grant pushes the key's expiry out by a full window; denied attempts leave
// the TTL untouched so they do not extend the wait.
func (r *Redis) Take(ctx context.Context, limit int, window time.Duration) (Reservation, error) {
	count, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return Reservation{}, fmt.Errorf("incr window counter: %w", err)
	}
	if count <= int64(limit) {
		if err := r.client.PExpire(ctx, r.key, window).Err(); err != nil {
			return Reservation{}, fmt.Errorf("set window expiry: %w", err)
		}
		return Reservation{OK: true}, nil
	}

	// Over budget: the INCR above overshot, but the key expires with the
	// window so the overshoot does not leak into the next one.
	ttl, err := r.client.PTTL(ctx, r.key).Result()
	if err != nil {
		return Reservation{}, fmt.Errorf("read window ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return Reservation{RetryAfter: ttl}, nil
}
