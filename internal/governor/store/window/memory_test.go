package window

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_TakeWithinBudget(t *testing.T) {
	m := NewMemory()

	for range 5 {
		res, err := m.Take(context.Background(), 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.OK)
	}
	assert.Equal(t, 5, m.Count())
}

func TestMemory_DeniesWhenExhausted(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }))

	res, err := m.Take(context.Background(), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, res.OK)

	now = now.Add(20 * time.Second)
	res, err = m.Take(context.Background(), 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, 40*time.Second, res.RetryAfter)
}

func TestMemory_LazyReset(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }))

	res, err := m.Take(context.Background(), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, res.OK)

	res, err = m.Take(context.Background(), 1, time.Minute)
	require.NoError(t, err)
	require.False(t, res.OK)

	// The counter resets on the first Take after a full window has passed
	// since the last recorded request, without any background timer.
	now = now.Add(time.Minute + time.Second)
	res, err = m.Take(context.Background(), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, m.Count())
}

func TestMemory_WindowAnchorsOnLastRequest(t *testing.T) {
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	now := start
	m := NewMemory(WithClock(func() time.Time { return now }))

	// Spend the whole budget slowly, one grant every 10s.
	const limit = 5
	for i := range limit {
		now = start.Add(time.Duration(i) * 10 * time.Second)
		res, err := m.Take(context.Background(), limit, time.Minute)
		require.NoError(t, err)
		require.True(t, res.OK)
	}

	// 61s after the first grant the last one is only 21s old; a fresh budget
	// here would allow 2R-1 grants inside one trailing window.
	now = start.Add(61 * time.Second)
	res, err := m.Take(context.Background(), limit, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.OK, "budget must stay closed until a full window passes since the last grant")
	assert.Equal(t, 39*time.Second, res.RetryAfter)

	// A denied attempt is not recorded, so the window still reopens a full
	// minute after the last grant.
	now = start.Add(101 * time.Second)
	res, err = m.Take(context.Background(), limit, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, m.Count())
}

func TestMemory_BudgetConsumedOnAttempt(t *testing.T) {
	m := NewMemory()

	// A Take consumes budget regardless of whether the caller's subsequent
	// lookup succeeds; there is no refund path.
	res, err := m.Take(context.Background(), 2, time.Minute)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 1, m.Count())
}
