package events

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"medcommons/pkg/requestcontext"
)

// Publisher is what domain services see. Emit must not block the calling
// operation and must not surface sink failures into it.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Sink persists or forwards events. Stores and brokers implement this.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Bus buffers events on a channel for the worker to drain. When the buffer is
// full the event is dropped and counted; notifications are observability, not
// ledger state.
type Bus struct {
	inbox   chan Event
	logger  *slog.Logger
	dropped atomic.Uint64
}

func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{inbox: make(chan Event, buffer), logger: logger}
}

// Emit stamps the event with identity, time, and request correlation taken
// from the context, then queues it.
func (b *Bus) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	select {
	case b.inbox <- event:
	default:
		b.dropped.Add(1)
		if b.logger != nil {
			b.logger.Warn("event dropped, inbox full",
				"type", string(event.Type),
				"subject", event.Subject,
			)
		}
	}
}

// Inbox exposes the channel for the worker.
func (b *Bus) Inbox() <-chan Event {
	return b.inbox
}

// Dropped reports how many events were discarded because the inbox was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// NopPublisher discards events; the default for services constructed without
// a bus (mostly tests).
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}

// Worker consumes events from the bus and fans them out to sinks. Sink
// failures are logged and skipped; a broken sink must not starve the others.
type Worker struct {
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.dispatch(event)
		}
	}
}

func (w *Worker) dispatch(event Event) {
	// Sinks get their own deadline; the emitting request is long gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, sink := range w.sinks {
		if err := sink.Append(ctx, event); err != nil && w.logger != nil {
			w.logger.Error("event sink append failed",
				"type", string(event.Type),
				"event_id", event.ID.String(),
				"error", err,
			)
		}
	}
}
