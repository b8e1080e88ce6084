// Package memory provides the in-process audit store used in tests and in
// deployments without a database.
package memory

import (
	"context"
	"sync"

	"dossier/pkg/platform/audit"
)

// Store keeps events in memory, append-only.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

// NewStore creates an empty in-memory audit store.
func NewStore() *Store {
	return &Store{}
}

// Append records one event.
func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListBySearch returns all events for a search ID in append order.
func (s *Store) ListBySearch(_ context.Context, searchID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []audit.Event
	for _, e := range s.events {
		if e.SearchID == searchID {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// All returns every recorded event in append order.
func (s *Store) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
