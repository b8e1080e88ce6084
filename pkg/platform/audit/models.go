// Package audit captures structured events for the operations trail: when
// searches start and finish and when sources fail. Events are emitted from
// domain logic through a Publisher and fan out to pluggable sinks, so the
// core stays transport-agnostic.
package audit

import "time"

// Event is one audit record. Keep it flat so every sink (memory, Postgres,
// Kafka) can serialize it without adapters.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// SearchID correlates all events of one search invocation.
	SearchID string `json:"search_id,omitempty"`
	// Source names the adapter involved, for source_failed events.
	Source string `json:"source,omitempty"`
	// Reason carries the failure category or other short context.
	Reason string `json:"reason,omitempty"`
	// RequestID is the HTTP correlation ID when the search came in over the
	// API.
	RequestID string `json:"request_id,omitempty"`
	// ClientUA is the caller's browser family, for API-originated searches.
	ClientUA string `json:"client_ua,omitempty"`
}

// AuditEvent enumerates the actions this engine emits.
type AuditEvent string

const (
	EventSearchStarted       AuditEvent = "search_started"
	EventSearchCompleted     AuditEvent = "search_completed"
	EventSourceFailed        AuditEvent = "source_failed"
	EventRateWindowExhausted AuditEvent = "rate_window_exhausted"
)
