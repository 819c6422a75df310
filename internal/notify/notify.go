package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the ledger.
const (
	EventToolAssigned = "tool_assigned"
	EventToolStockLow = "tool_stock_low"
	EventToolDamaged  = "tool_damaged"
)

// Event is an outward notification about a committed ledger mutation.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ToolID       int64     `json:"tool_id"`
	ToolCode     string    `json:"tool_code"`
	TicketNumber string    `json:"ticket_number,omitempty"`
	Quantity     int       `json:"quantity"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(eventType string, toolID int64, toolCode string, quantity int) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ToolID:     toolID,
		ToolCode:   toolCode,
		Quantity:   quantity,
		OccurredAt: time.Now().UTC(),
	}
}

// Sink receives ledger events. Implementations must not assume they are
// called inside the transaction that produced the event; by the time a sink
// sees an event, the corresponding mutation is already committed.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Notifier fans events out to registered sinks. A slow or panicking sink
// cannot roll back a committed mutation.
type Notifier struct {
	sinks []Sink
}

// NewNotifier creates a notifier with the given sinks.
func NewNotifier(sinks ...Sink) *Notifier {
	return &Notifier{sinks: sinks}
}

// Publish delivers events to every sink, in order.
func (n *Notifier) Publish(ctx context.Context, events ...Event) {
	if n == nil {
		return
	}
	for _, event := range events {
		for _, sink := range n.sinks {
			n.deliver(ctx, sink, event)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, sink Sink, event Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event sink panicked", "type", event.Type, "sink_error", r)
		}
	}()
	sink.Publish(ctx, event)
}

// LogSink logs events via slog. It is the default sink when no external
// notification service is configured.
type LogSink struct{}

// Publish implements Sink.
func (LogSink) Publish(_ context.Context, event Event) {
	slog.Info("ledger event",
		"id", event.ID,
		"type", event.Type,
		"tool_code", event.ToolCode,
		"ticket", event.TicketNumber,
		"quantity", event.Quantity,
	)
}
