package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Buffer is the working-memory staging area. Items wait here until a
// promotion decision consolidates them into durable records or their expiry
// passes.
//
// Take must be linearizable: exactly one caller receives a given item, which
// is what makes promotion at-most-once. Expire is idempotent housekeeping
// and safe to run repeatedly.
type Buffer interface {
	Put(ctx context.Context, item *WorkingItem) error
	Get(ctx context.Context, id string) (*WorkingItem, error)
	Take(ctx context.Context, id string) (*WorkingItem, error)
	List(ctx context.Context) ([]*WorkingItem, error)
	Expire(ctx context.Context) (int, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// LocalBuffer is the in-process Buffer implementation: a mutex-guarded map
// with expiry enforced on access and by the janitor.
type LocalBuffer struct {
	mu       sync.Mutex
	items    map[string]*WorkingItem
	capacity int
}

// NewLocalBuffer creates a buffer holding at most capacity items; capacity
// <= 0 means unbounded.
func NewLocalBuffer(capacity int) *LocalBuffer {
	return &LocalBuffer{
		items:    make(map[string]*WorkingItem),
		capacity: capacity,
	}
}

// Put stores the item, overwriting any previous item with the same id.
func (b *LocalBuffer) Put(ctx context.Context, item *WorkingItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.ID == "" {
		return &ValidationError{Field: "id", Reason: "working item id is required"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.items[item.ID]; !exists && b.capacity > 0 && len(b.items) >= b.capacity {
		return ErrBufferFull
	}
	b.items[item.ID] = cloneItem(item)
	return nil
}

// Get returns a copy of the item without removing it.
func (b *LocalBuffer) Get(ctx context.Context, id string) (*WorkingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok || item.Expired(time.Now()) {
		return nil, &NotFoundError{EntityType: "working item", ID: id}
	}
	return cloneItem(item), nil
}

// Take atomically removes and returns the item. A second take of the same
// id, or a take of an expired item, fails with ErrItemTaken.
func (b *LocalBuffer) Take(ctx context.Context, id string) (*WorkingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok {
		return nil, ErrItemTaken
	}
	delete(b.items, id)
	if item.Expired(time.Now()) {
		return nil, ErrItemTaken
	}
	return item, nil
}

// List returns unexpired items ordered oldest first.
func (b *LocalBuffer) List(ctx context.Context) ([]*WorkingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	b.mu.Lock()
	out := make([]*WorkingItem, 0, len(b.items))
	for _, item := range b.items {
		if item.Expired(now) {
			continue
		}
		out = append(out, cloneItem(item))
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Expire removes items past their expiry and returns how many were removed.
func (b *LocalBuffer) Expire(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for id, item := range b.items {
		if item.Expired(now) {
			delete(b.items, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of buffered items, including not-yet-reaped
// expired ones.
func (b *LocalBuffer) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items), nil
}

// Close is a no-op for the local buffer.
func (b *LocalBuffer) Close() error {
	return nil
}
