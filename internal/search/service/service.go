// Package service implements the search orchestrator. A search is decomposed
// into one independent task per present query attribute; every adapter call
// inside a task is dispatched concurrently and individually gated by the
// admission governor. Per-source failures are recorded and swallowed; only a
// structurally empty query is fatal.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dossier/internal/search/correlate"
	"dossier/internal/search/metrics"
	"dossier/internal/search/models"
	"dossier/internal/source"
	"dossier/pkg/platform/audit"
	"dossier/pkg/requestcontext"
)

// ErrEmptyQuery rejects a query with no attributes before any governor or
// adapter call is made.
var ErrEmptyQuery = errors.New("query has no attributes")

// Permits is the admission gate contract the orchestrator needs. Satisfied
// by *governor.Governor.
type Permits interface {
	Acquire(ctx context.Context) error
	Release()
}

// AuditPublisher emits operational audit events. Optional.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service fans queries out to source adapters and correlates the findings.
type Service struct {
	registry *source.Registry
	permits  Permits
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    AuditPublisher
	// timeout bounds one search end to end; zero means no deadline. On
	// expiry, in-flight lookups are abandoned and whatever was collected so
	// far still flows into correlation.
	timeout time.Duration
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAudit(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates the orchestrator. Registry and permits are required.
func New(registry *source.Registry, permits Permits, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("adapter registry is required")
	}
	if permits == nil {
		return nil, errors.New("admission permits are required")
	}

	s := &Service{
		registry: registry,
		permits:  permits,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search runs one query against every adapter that can serve its attributes
// and returns the correlated results plus a per-source status summary.
// Only ErrEmptyQuery is returned as an error; adapter failures degrade to
// fewer results and show up in the status slice instead.
func (s *Service) Search(ctx context.Context, q models.Query) ([]models.Result, []models.SourceStatus, error) {
	if q.IsEmpty() {
		if s.metrics != nil {
			s.metrics.EmptyQueriesTotal.Inc()
		}
		return nil, nil, ErrEmptyQuery
	}

	searchID := uuid.NewString()
	start := s.clock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.emit(ctx, audit.Event{
		Action:   string(audit.EventSearchStarted),
		SearchID: searchID,
	})

	coll := newCollector()
	// A plain group, not WithContext: one failing source must never cancel
	// its siblings.
	var g errgroup.Group
	for _, attr := range q.Attributes() {
		for _, adapter := range s.registry.ForKind(attr.Kind) {
			g.Go(func() error {
				s.lookup(ctx, searchID, adapter, attr, coll)
				return nil
			})
		}
	}
	_ = g.Wait()

	results := correlate.Correlate(coll.all(), q)
	statuses := coll.statuses()

	if s.metrics != nil {
		s.metrics.ObserveSearch(s.clock().Sub(start), len(results))
	}
	s.emit(ctx, audit.Event{
		Action:   string(audit.EventSearchCompleted),
		SearchID: searchID,
	})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "search completed",
			"search_id", searchID,
			"results", len(results),
			"sources", len(statuses),
			"duration", s.clock().Sub(start),
		)
	}
	return results, statuses, nil
}

// lookup runs one adapter call under an admission permit. The permit is
// released on every path out, including panics inside the adapter surfacing
// as a failed search elsewhere.
func (s *Service) lookup(ctx context.Context, searchID string, adapter source.Adapter, attr models.Attribute, coll *collector) {
	name := adapter.Name()
	coll.recordCall(name)
	if s.metrics != nil {
		s.metrics.AdapterCallsTotal.WithLabelValues(name).Inc()
	}

	if err := s.permits.Acquire(ctx); err != nil {
		// Deadline hit while queued for admission: the lookup is abandoned,
		// findings collected so far still make it into the result set.
		coll.recordFailure(name, source.CategoryTimeout)
		if s.logger != nil {
			s.logger.DebugContext(ctx, "lookup abandoned before admission",
				"search_id", searchID,
				"source", name,
				"error", err,
			)
		}
		return
	}
	defer s.permits.Release()

	findings, err := adapter.Lookup(ctx, attr)
	if err != nil {
		category := source.Categorize(err)
		coll.recordFailure(name, category)
		if s.metrics != nil {
			s.metrics.SourceFailuresTotal.WithLabelValues(name, string(category)).Inc()
		}
		s.emit(ctx, audit.Event{
			Action:   string(audit.EventSourceFailed),
			SearchID: searchID,
			Source:   name,
			Reason:   string(category),
		})
		if s.logger != nil {
			s.logger.WarnContext(ctx, "source lookup failed",
				"search_id", searchID,
				"source", name,
				"attribute", string(attr.Kind),
				"category", string(category),
				"error", err,
			)
		}
		return
	}

	coll.add(findings)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientUA = requestcontext.ClientUA(ctx)
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
