package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store is the durable audit sink. Append-only by contract: no update or
// delete operations exist.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, limit int) ([]Event, error)
}

// Sink is an optional secondary fan-out target (e.g. a Kafka topic).
type Sink interface {
	Publish(ctx context.Context, event Event)
	Close()
}

// Publisher captures structured audit events. The store write is
// authoritative; sink delivery is best-effort and never fails the caller,
// because audit fan-out must not veto a legitimate vote.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSink attaches a secondary fan-out sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) { p.sink = sink }
}

// NewPublisher constructs an audit publisher over the given store.
func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records an event, filling in timestamp and category when unset.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = CategoryOf(event.Action)
	}

	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}

	if p.sink != nil {
		p.sink.Publish(ctx, event)
	}
}

// List returns the most recent events, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.List(ctx, limit)
}

// Close releases the sink, flushing buffered events.
func (p *Publisher) Close() {
	if p.sink != nil {
		p.sink.Close()
	}
}
