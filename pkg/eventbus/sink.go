// Package eventbus carries memory lifecycle events between the engine and
// its consumers. The canonical envelope, subject taxonomy, and schema
// validation are transport-agnostic; LocalBus is the in-process transport
// and anything satisfying Transport (a NATS connection, for instance) can
// replace it.
package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/engramhq/engram/pkg/memory"
)

const defaultSinkBuffer = 256

// Sink adapts the engine's EventSink to the distributed publisher. The
// engine must never block on event delivery, so Publish only enqueues;
// a background worker does the publishing and events are dropped once the
// queue is full. Publish failures surface through the publisher telemetry.
type Sink struct {
	publisher *Publisher
	timeout   time.Duration

	queue   chan memory.Event
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Int64
	once    sync.Once
}

// NewSink creates a sink draining into the publisher and starts its worker.
func NewSink(publisher *Publisher, buffer int) *Sink {
	if buffer <= 0 {
		buffer = defaultSinkBuffer
	}
	s := &Sink{
		publisher: publisher,
		timeout:   5 * time.Second,
		queue:     make(chan memory.Event, buffer),
		done:      make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Publish enqueues a lifecycle event without blocking.
func (s *Sink) Publish(ctx context.Context, event memory.Event) {
	select {
	case s.queue <- event:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops the worker after draining events already queued.
func (s *Sink) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *Sink) run() {
	defer s.wg.Done()
	for {
		select {
		case event := <-s.queue:
			s.forward(event)
		case <-s.done:
			for {
				select {
				case event := <-s.queue:
					s.forward(event)
				default:
					return
				}
			}
		}
	}
}

func (s *Sink) forward(event memory.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	domain := DomainRecord
	if event.Change == memory.ChangeLink {
		domain = DomainRelationship
	}

	// Ordering key is the memory id, matching the per-memory change trail.
	_, _ = s.publisher.PublishLifecycleEvent(ctx, LifecycleEvent{
		Domain:     domain,
		EventType:  string(event.Change),
		MemoryType: string(event.Type),
		MemoryID:   event.MemoryID,
		Payload:    event,
	})
}
