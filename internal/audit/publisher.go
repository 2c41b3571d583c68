// Package audit mirrors consent audit events onto a compliance stream. The
// authoritative per-consent audit rows live in the consent store; this stream
// is a best-effort operational feed, so delivery failures are logged and
// dropped rather than surfaced to the operation that produced the event.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is the transport-agnostic shape of one mirrored audit entry.
type Event struct {
	ConsentID string    `json:"consentId"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives mirrored events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Publisher fans audit events out to a sink, optionally through an async
// buffer so the consent hot path never blocks on the compliance stream.
type Publisher struct {
	sink   Sink
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and delivered by a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithLogger sets a logger for async error reporting.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a Publisher over the given sink.
func NewPublisher(sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.sink.Write(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to deliver audit event",
					"error", err,
					"action", event.Action,
					"consent_id", event.ConsentID,
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit delivers one event. In async mode the send is non-blocking: when the
// buffer is full the event is dropped with a warning, keeping the hot path
// free of compliance-stream backpressure.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.async {
		select {
		case p.events <- event:
			return nil
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", event.Action,
					"consent_id", event.ConsentID,
				)
			}
			return nil
		}
	}
	return p.sink.Write(ctx, event)
}
