package events

import (
	"context"
	"testing"
	"time"

	"github.com/engramhq/engram/pkg/memory"
)

func TestBroadcaster_SubscribeBroadcastUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(1)

	b.Broadcast(Event{
		Type: EventMemoryCreated,
		Payload: map[string]any{
			"memory_id": "mem-1",
		},
	})

	select {
	case event := <-ch:
		if event.Type != EventMemoryCreated {
			t.Fatalf("type = %q, want %q", event.Type, EventMemoryCreated)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected broadcast to stamp a timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast event")
	}

	b.Unsubscribe(ch)
}

func TestBroadcaster_PublishWrapsEngineEvents(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(2)

	at := time.Now().UTC()
	b.Publish(context.Background(), memory.Event{
		MemoryID: "mem-1",
		Type:     memory.TypeSemantic,
		Change:   memory.ChangeCreate,
		At:       at,
	})
	b.Publish(context.Background(), memory.Event{
		MemoryID: "mem-1",
		Change:   memory.ChangeArchive,
		At:       at,
	})

	for _, want := range []string{EventMemoryCreated, EventMemoryArchived} {
		select {
		case event := <-ch:
			if event.Type != want {
				t.Fatalf("type = %q, want %q", event.Type, want)
			}
			payload, ok := event.Payload.(memory.Event)
			if !ok {
				t.Fatalf("payload type = %T, want memory.Event", event.Payload)
			}
			if payload.MemoryID != "mem-1" {
				t.Fatalf("memory id = %q, want mem-1", payload.MemoryID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s event", want)
		}
	}
}

func TestBroadcaster_DropsOnFullSubscriber(t *testing.T) {
	b := NewBroadcaster()
	full := b.Subscribe(1)
	open := b.Subscribe(2)

	b.Broadcast(Event{Type: EventMemoryCreated})
	b.Broadcast(Event{Type: EventMemoryAccessed})

	if got := len(full); got != 1 {
		t.Fatalf("full subscriber buffered %d events, want 1", got)
	}

	var received int
	for received < 2 {
		select {
		case <-open:
			received++
		case <-time.After(time.Second):
			t.Fatalf("expected 2 events on open subscriber, got %d", received)
		}
	}
}

func TestEventName_MapsChangeTypes(t *testing.T) {
	cases := []struct {
		change memory.ChangeType
		want   string
	}{
		{memory.ChangeCreate, EventMemoryCreated},
		{memory.ChangeAccess, EventMemoryAccessed},
		{memory.ChangeArchive, EventMemoryArchived},
		{memory.ChangeInvalidate, EventMemoryInvalidated},
		{memory.ChangeLink, EventMemoryLinked},
		{memory.ChangeAttempt, EventMemoryAttempt},
		{memory.ChangeValidate, EventMemoryValidated},
	}

	for _, tc := range cases {
		if got := EventName(tc.change); got != tc.want {
			t.Errorf("EventName(%q) = %q, want %q", tc.change, got, tc.want)
		}
	}
}
