// Package postgres persists audit events in PostgreSQL via database/sql and
// the pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dossier/pkg/platform/audit"
)

// Store writes audit events to the audit_events table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the DDL for the audit_events table. Exposed so deployments and
// integration tests can create it without a separate migration file.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	search_id  TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	client_ua  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_search_id_idx ON audit_events (search_id);
`

// Append inserts one event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	const query = `
		INSERT INTO audit_events (id, search_id, action, source, reason, request_id, client_ua, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(), event.SearchID, event.Action, event.Source,
		event.Reason, event.RequestID, event.ClientUA, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListBySearch returns all events for a search ID in insertion order.
func (s *Store) ListBySearch(ctx context.Context, searchID string) ([]audit.Event, error) {
	const query = `
		SELECT search_id, action, source, reason, request_id, client_ua, created_at
		FROM audit_events
		WHERE search_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, searchID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.SearchID, &e.Action, &e.Source, &e.Reason, &e.RequestID, &e.ClientUA, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
