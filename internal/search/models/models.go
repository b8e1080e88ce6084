// Package models holds the value types that flow through a search: the
// inbound Query, raw per-source Findings, and correlated Results. Values are
// copied across component boundaries; nothing here is shared mutable state.
package models

// Confidence is the three-tier score attached to a Finding.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank maps a confidence tier to a sortable weight. Unknown tiers rank below
// low so malformed adapter output sinks to the bottom instead of the top.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Max returns the higher of two confidence tiers.
func (c Confidence) Max(other Confidence) Confidence {
	if other.Rank() > c.Rank() {
		return other
	}
	return c
}

// AttributeKind identifies which identity attribute a lookup is keyed on.
type AttributeKind string

const (
	AttributeName     AttributeKind = "name"
	AttributeUsername AttributeKind = "username"
	AttributeEmail    AttributeKind = "email"
	AttributePhone    AttributeKind = "phone"
	AttributeLocation AttributeKind = "location"
)

// Attribute is one typed query attribute handed to a source adapter.
type Attribute struct {
	Kind  AttributeKind
	Value string
}

// Query is the set of optional identity attributes a search starts from.
// The boundary layer sanitizes the strings before they reach the core; at
// least one attribute must be present or the orchestrator rejects the query.
type Query struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	// Image carries an optional payload for reverse-image lookups. It is not
	// decomposed into an attribute-task; adapters key on the string attributes.
	Image []byte `json:"image,omitempty"`
}

// IsEmpty reports whether no attribute is set.
func (q Query) IsEmpty() bool {
	return q.Name == "" && q.Username == "" && q.Email == "" &&
		q.Phone == "" && q.Location == "" && len(q.Image) == 0
}

// Attributes returns the present string attributes in a stable order. Each
// entry becomes one independent attribute-task in the orchestrator.
func (q Query) Attributes() []Attribute {
	var attrs []Attribute
	add := func(kind AttributeKind, value string) {
		if value != "" {
			attrs = append(attrs, Attribute{Kind: kind, Value: value})
		}
	}
	add(AttributeName, q.Name)
	add(AttributeUsername, q.Username)
	add(AttributeEmail, q.Email)
	add(AttributePhone, q.Phone)
	add(AttributeLocation, q.Location)
	return attrs
}

// Finding is one raw piece of evidence from a single source before
// correlation. URL is its natural identity for deduplication within a run.
type Finding struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	LastSeen    string     `json:"last_seen,omitempty"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Confidence  Confidence `json:"confidence"`

	// Identity attributes the finding was keyed on; used for corroboration.
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Result is a Finding after deduplication and confidence re-scoring. Results
// live for exactly one search invocation and are never persisted.
type Result Finding

// SourceStatus summarizes how one adapter fared during a search, so callers
// can tell "no results exist" apart from "every source failed".
type SourceStatus struct {
	Source   string `json:"source"`
	Calls    int    `json:"calls"`
	Failures int    `json:"failures"`
	// LastError holds the final failure category observed, empty when clean.
	LastError string `json:"last_error,omitempty"`
}
