package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewStore()
	pub := audit.NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Action:   string(audit.EventSearchStarted),
		SearchID: "s-1",
	})
	require.NoError(t, err)

	events, err := store.ListBySearch(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventSearchStarted), events[0].Action)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewStore()
	pub := audit.NewPublisher(store, audit.WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Action:   string(audit.EventSearchCompleted),
		SearchID: "s-2",
	})
	require.NoError(t, err)

	// Wait for the background worker.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(store.All()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	events, err := store.ListBySearch(context.Background(), "s-2")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewStore()
	pub := audit.NewPublisher(store, audit.WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			Action:   string(audit.EventSourceFailed),
			SearchID: "s-3",
		}))
	}

	pub.Close()

	events, err := store.ListBySearch(context.Background(), "s-3")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all buffered events should be drained on close")
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewStore()
	pub := audit.NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:   string(audit.EventSearchStarted),
		SearchID: "s-4",
	}))
	after := time.Now()

	events := store.All()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewStore()
	pub := audit.NewPublisher(store)
	defer pub.Close()

	stamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventSearchStarted),
		Timestamp: stamp,
	}))

	events := store.All()
	require.Len(t, events, 1)
	assert.Equal(t, stamp, events[0].Timestamp)
}

func TestFanout_AppendsToEverySink(t *testing.T) {
	first := memory.NewStore()
	second := memory.NewStore()
	sink := audit.Fanout(first, second)

	require.NoError(t, sink.Append(context.Background(), audit.Event{
		Action:   string(audit.EventSearchStarted),
		SearchID: "s-5",
	}))

	assert.Len(t, first.All(), 1)
	assert.Len(t, second.All(), 1)
}
