package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Sink accepts emitted events. Write-only backends like Kafka implement just
// this; backends that keep history implement Store.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a sink whose events can be read back, keyed by search ID.
type Store interface {
	Sink
	ListBySearch(ctx context.Context, searchID string) ([]Event, error)
}

// ErrBufferFull is returned by async emission when the buffer has no room.
// Audit is best-effort for operational events, so callers typically log and
// move on.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher stamps and forwards events to a sink. By default emission is
// synchronous; WithAsyncBuffer switches to a buffered background worker so
// hot paths never block on a slow sink.
type Publisher struct {
	sink Sink

	buffer chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// When the buffer is full, Emit drops the event and reports ErrBufferFull.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan Event, size)
		}
	}
}

// NewPublisher creates a publisher over the given sink.
func NewPublisher(sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		sink: sink,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one event, stamping the timestamp if unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		return p.sink.Append(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close drains any buffered events and stops the worker. Safe to call more
// than once.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
		close(p.done)
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// Buffered events outlive the emitting request; a background context
		// keeps the sink write from being cancelled with it.
		_ = p.sink.Append(context.Background(), event)
	}
}
