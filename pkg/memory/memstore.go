package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-process Store implementation backed by maps. It is the
// reference backend for tests and ephemeral deployments; durable backends
// live under pkg/store.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	edges   []*Relationship
	edgeIdx map[string]int
	changes map[string][]*ChangeRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]*Record),
		edgeIdx: make(map[string]int),
		changes: make(map[string][]*ChangeRecord),
	}
}

func edgeKey(fromID, relType, toID string) string {
	return fmt.Sprintf("%s|%s|%s", fromID, relType, toID)
}

// CreateRecord persists a new record with version 1 and its create change.
func (s *MemStore) CreateRecord(ctx context.Context, rec *Record, change *ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if change == nil {
		return &ValidationError{Field: "change", Reason: "create requires a change entry"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return &ConflictError{MemoryID: rec.ID}
	}

	rec.Version = 1
	s.records[rec.ID] = cloneRecord(rec)
	s.appendChangeLocked(rec.ID, change)
	return nil
}

// GetRecord returns a copy of the record by id.
func (s *MemStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, &NotFoundError{EntityType: "memory", ID: id}
	}
	return cloneRecord(rec), nil
}

// UpdateRecord applies a compare-and-set mutation together with its change.
func (s *MemStore) UpdateRecord(ctx context.Context, rec *Record, change *ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if change == nil {
		return &ValidationError{Field: "change", Reason: "update requires a change entry"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[rec.ID]
	if !ok {
		return &NotFoundError{EntityType: "memory", ID: rec.ID}
	}
	if current.Version != rec.Version {
		return &ConflictError{MemoryID: rec.ID}
	}

	rec.Version++
	s.records[rec.ID] = cloneRecord(rec)
	s.appendChangeLocked(rec.ID, change)
	return nil
}

// ListRecords returns records matching the filter, newest first.
func (s *MemStore) ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*Record, 0)
	for _, rec := range s.records {
		if filter.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	matched = paginate(matched, filter.Offset, filter.Limit)
	out := make([]*Record, len(matched))
	for i, rec := range matched {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

// CountRecords returns the number of records matching the filter.
func (s *MemStore) CountRecords(ctx context.Context, filter RecordFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.records {
		if filter.Matches(rec) {
			count++
		}
	}
	return count, nil
}

// PutRelationship upserts an edge after resolving both endpoints.
func (s *MemStore) PutRelationship(ctx context.Context, rel *Relationship, change *ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rel.FromID]; !ok {
		return &NotFoundError{EntityType: "memory", ID: rel.FromID}
	}
	if _, ok := s.records[rel.ToID]; !ok {
		return &NotFoundError{EntityType: "memory", ID: rel.ToID}
	}

	key := edgeKey(rel.FromID, rel.RelType, rel.ToID)
	if idx, exists := s.edgeIdx[key]; exists {
		existing := s.edges[idx]
		existing.Properties = cloneProperties(rel.Properties)
		rel.ID = existing.ID
		rel.CreatedAt = existing.CreatedAt
	} else {
		s.edgeIdx[key] = len(s.edges)
		s.edges = append(s.edges, cloneRelationship(rel))
	}
	if change != nil {
		s.appendChangeLocked(rel.FromID, change)
	}
	return nil
}

// ListRelationships returns matching edges in creation order.
func (s *MemStore) ListRelationships(ctx context.Context, query RelationshipQuery) ([]*Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Relationship, 0)
	for _, rel := range s.edges {
		if !query.Matches(rel) {
			continue
		}
		out = append(out, cloneRelationship(rel))
	}
	return out, nil
}

// Changes returns the memory's audit trail ordered by sequence.
func (s *MemStore) Changes(ctx context.Context, memoryID string) ([]*ChangeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	trail := s.changes[memoryID]
	out := make([]*ChangeRecord, len(trail))
	for i, change := range trail {
		out[i] = cloneChange(change)
	}
	return out, nil
}

// HealthCheck always succeeds for the in-memory backend.
func (s *MemStore) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory backend.
func (s *MemStore) Close() error {
	return nil
}

// appendChangeLocked assigns the next per-memory sequence and stores a copy.
// Caller holds the write lock.
func (s *MemStore) appendChangeLocked(memoryID string, change *ChangeRecord) {
	change.Sequence = uint64(len(s.changes[memoryID]) + 1)
	s.changes[memoryID] = append(s.changes[memoryID], cloneChange(change))
}

func paginate(records []*Record, offset, limit int) []*Record {
	if offset > 0 {
		if offset >= len(records) {
			return nil
		}
		records = records[offset:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}
