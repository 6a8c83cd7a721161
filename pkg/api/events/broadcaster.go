// Package events fans lifecycle events out to in-process subscribers,
// bridging the memory engine to the websocket layer.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/engramhq/engram/pkg/memory"
)

// Lifecycle event names broadcast to subscribers.
const (
	EventMemoryCreated     = "memory.created"
	EventMemoryAccessed    = "memory.accessed"
	EventMemoryArchived    = "memory.archived"
	EventMemoryInvalidated = "memory.invalidated"
	EventMemoryLinked      = "memory.linked"
	EventMemoryAttempt     = "memory.attempt"
	EventMemoryValidated   = "memory.validated"
)

// EventName maps an audit change type to its broadcast event name.
func EventName(change memory.ChangeType) string {
	switch change {
	case memory.ChangeCreate:
		return EventMemoryCreated
	case memory.ChangeAccess:
		return EventMemoryAccessed
	case memory.ChangeArchive:
		return EventMemoryArchived
	case memory.ChangeInvalidate:
		return EventMemoryInvalidated
	case memory.ChangeLink:
		return EventMemoryLinked
	case memory.ChangeAttempt:
		return EventMemoryAttempt
	case memory.ChangeValidate:
		return EventMemoryValidated
	default:
		return "memory." + string(change)
	}
}

// Event is the canonical event payload broadcast to websocket subscribers.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Broadcaster broadcasts events to in-process subscribers. It implements
// the engine's event sink, so wiring it as a sink streams every committed
// lifecycle mutation to whoever subscribes.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a broadcaster instance.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe subscribes to events with a buffered channel.
func (b *Broadcaster) Subscribe(buffer int) chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Broadcast broadcasts a generic event to all subscribers.
func (b *Broadcaster) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]chan Event, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Drop on overflow to keep broadcasters non-blocking.
		}
	}
}

// Publish satisfies the engine's event sink. The committed mutation is
// wrapped with its event name and fanned out without blocking the caller.
func (b *Broadcaster) Publish(ctx context.Context, event memory.Event) {
	b.Broadcast(Event{
		Type:      EventName(event.Change),
		Timestamp: event.At.UTC(),
		Payload:   event,
	})
}

// Close closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}
