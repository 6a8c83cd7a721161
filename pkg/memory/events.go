package memory

import (
	"context"
	"time"
)

// Event describes one committed lifecycle mutation. Events are emitted after
// the mutation and its change record are durably stored.
type Event struct {
	MemoryID string     `json:"memory_id"`
	Type     Type       `json:"type"`
	Change   ChangeType `json:"change"`
	At       time.Time  `json:"at"`
}

// EventSink receives lifecycle events. Implementations must not block; slow
// consumers drop or buffer on their side.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}

type nopEventSink struct{}

func (n *nopEventSink) Publish(ctx context.Context, event Event) {}

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

// Publish delivers the event to every sink.
func (m MultiSink) Publish(ctx context.Context, event Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ctx, event)
		}
	}
}
