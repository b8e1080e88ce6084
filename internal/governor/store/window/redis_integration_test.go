//go:build integration

package window_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/governor/store/window"
	"dossier/pkg/testutil/containers"
)

func TestRedisWindow_TakeWithinBudget(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := window.NewRedis(rc.Client, "dossier:test:window")
	for i := 0; i < 5; i++ {
		res, err := store.Take(ctx, 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.OK, "request %d should fit the budget", i)
	}
}

func TestRedisWindow_DeniesWhenExhausted(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := window.NewRedis(rc.Client, "dossier:test:window")
	for i := 0; i < 3; i++ {
		res, err := store.Take(ctx, 3, time.Minute)
		require.NoError(t, err)
		require.True(t, res.OK)
	}

	res, err := store.Take(ctx, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}

func TestRedisWindow_BudgetSharedAcrossStores(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	// Two replicas pointing at the same key must drain one budget.
	first := window.NewRedis(rc.Client, "dossier:test:shared")
	second := window.NewRedis(rc.Client, "dossier:test:shared")

	res, err := first.Take(ctx, 2, time.Minute)
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = second.Take(ctx, 2, time.Minute)
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = first.Take(ctx, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.OK, "third request must be denied regardless of which replica takes it")
}

func TestRedisWindow_ExpiryFollowsLastGrant(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := window.NewRedis(rc.Client, "dossier:test:lastgrant")

	// Two grants 300ms apart inside a 500ms window. Each grant refreshes the
	// expiry, so 200ms after the second one (500ms after the first) the
	// budget must still be closed.
	res, err := store.Take(ctx, 2, 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, res.OK)

	time.Sleep(300 * time.Millisecond)
	res, err = store.Take(ctx, 2, 500*time.Millisecond)
	require.NoError(t, err)
	require.True(t, res.OK)

	time.Sleep(200 * time.Millisecond)
	res, err = store.Take(ctx, 2, 500*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, res.OK, "window must expire a full duration after the last grant, not the first")

	time.Sleep(400 * time.Millisecond)
	res, err = store.Take(ctx, 2, 500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestRedisWindow_ResetsAfterExpiry(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := window.NewRedis(rc.Client, "dossier:test:expiry")

	res, err := store.Take(ctx, 1, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = store.Take(ctx, 1, 200*time.Millisecond)
	require.NoError(t, err)
	require.False(t, res.OK)

	time.Sleep(300 * time.Millisecond)

	res, err = store.Take(ctx, 1, 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.OK, "budget should refill once the key expires")
}
