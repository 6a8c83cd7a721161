package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBuffer is a Redis-backed Buffer for deployments where working memory
// must survive process restarts or be shared across instances. Expiry rides
// on per-key TTLs; Take maps to GETDEL so the at-most-once hand-off holds
// across processes. Capacity is not enforced here.
type RedisBuffer struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisBuffer creates a buffer on the given client. The client is shared
// infrastructure owned by the caller.
func NewRedisBuffer(client redis.UniversalClient, keyPrefix string) *RedisBuffer {
	if keyPrefix == "" {
		keyPrefix = "engram:wm:"
	}
	return &RedisBuffer{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (b *RedisBuffer) key(id string) string {
	return b.keyPrefix + id
}

// Put stores the item under its id, with a TTL when expiry is set.
func (b *RedisBuffer) Put(ctx context.Context, item *WorkingItem) error {
	if item.ID == "" {
		return &ValidationError{Field: "id", Reason: "working item id is required"}
	}

	var ttl time.Duration
	if item.ExpiresAt != nil {
		ttl = time.Until(*item.ExpiresAt)
		if ttl <= 0 {
			// Already past expiry; nothing to stage.
			return nil
		}
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal working item: %w", err)
	}
	if err := b.client.Set(ctx, b.key(item.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store working item: %w", err)
	}
	return nil
}

// Get returns the item without removing it.
func (b *RedisBuffer) Get(ctx context.Context, id string) (*WorkingItem, error) {
	data, err := b.client.Get(ctx, b.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &NotFoundError{EntityType: "working item", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load working item: %w", err)
	}
	return unmarshalItem(data)
}

// Take atomically removes and returns the item via GETDEL.
func (b *RedisBuffer) Take(ctx context.Context, id string) (*WorkingItem, error) {
	data, err := b.client.GetDel(ctx, b.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrItemTaken
	}
	if err != nil {
		return nil, fmt.Errorf("take working item: %w", err)
	}
	return unmarshalItem(data)
}

// List scans the buffer keyspace and returns items oldest first.
func (b *RedisBuffer) List(ctx context.Context) ([]*WorkingItem, error) {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*WorkingItem{}, nil
	}

	values, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load working items: %w", err)
	}

	out := make([]*WorkingItem, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Key expired between scan and fetch.
			continue
		}
		item, err := unmarshalItem([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Expire is a no-op: Redis reaps expired keys itself.
func (b *RedisBuffer) Expire(ctx context.Context) (int, error) {
	return 0, ctx.Err()
}

// Len returns the number of staged items.
func (b *RedisBuffer) Len(ctx context.Context) (int, error) {
	keys, err := b.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBuffer) Close() error {
	return nil
}

func (b *RedisBuffer) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := b.client.Scan(ctx, cursor, b.keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan working items: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func unmarshalItem(data []byte) (*WorkingItem, error) {
	var item WorkingItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("unmarshal working item: %w", err)
	}
	return &item, nil
}
