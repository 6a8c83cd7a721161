package eventbus

import (
	"encoding/json"
	"fmt"
	"sync"
)

// LifecycleConsumer turns raw bus payloads back into validated lifecycle
// envelopes. Redeliveries are suppressed two ways: exact duplicates by event
// id, and stale envelopes whose sequence is not ahead of the newest one seen
// for the same publisher and ordering key. Because the ordering key is the
// memory id, that second check means a consumer observes each memory's
// change trail in order even when the transport redelivers.
type LifecycleConsumer struct {
	router *SchemaRouter

	mu   sync.Mutex
	seen map[string]struct{}
	// progress maps node|orderingKey to the highest sequence consumed.
	progress map[string]int64
}

// NewLifecycleConsumer creates a schema-aware consumer. A nil router skips
// payload validation and decoding.
func NewLifecycleConsumer(router *SchemaRouter) *LifecycleConsumer {
	return &LifecycleConsumer{
		router:   router,
		seen:     make(map[string]struct{}),
		progress: make(map[string]int64),
	}
}

// Consume decodes raw event bytes, validates them against the registered
// schemas, and reports whether the envelope is a redelivery. Redelivered
// envelopes return with a nil payload and no error so tail consumers can
// skip them cheaply.
func (c *LifecycleConsumer) Consume(raw []byte) (Envelope, any, bool, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, nil, false, fmt.Errorf("eventbus: invalid envelope json: %w", err)
	}

	if c.router != nil {
		if err := c.router.ValidateIncoming(envelope); err != nil {
			return Envelope{}, nil, false, err
		}
	}

	if c.redelivered(envelope) {
		return envelope, nil, true, nil
	}

	var decoded any = envelope
	var err error
	if c.router != nil {
		decoded, err = c.router.Decode(envelope)
		if err != nil {
			return Envelope{}, nil, false, err
		}
	}
	return envelope, decoded, false, nil
}

// redelivered records the envelope as consumed and reports whether it had
// been consumed before, either verbatim or as an older change for the same
// memory than one already seen.
func (c *LifecycleConsumer) redelivered(envelope Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.seen[envelope.EventID]; exists {
		return true
	}
	c.seen[envelope.EventID] = struct{}{}

	// Sequences are per-publisher counters, so stale detection is scoped
	// to the publishing node.
	if envelope.OrderingKey == "" || envelope.Sequence <= 0 {
		return false
	}
	key := envelope.NodeID + "|" + envelope.OrderingKey
	if envelope.Sequence <= c.progress[key] {
		return true
	}
	c.progress[key] = envelope.Sequence
	return false
}
