package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// StoreTestSuite defines a conformance suite that can be run against any
// Store implementation. Backends get the transactional semantics checked
// here for free instead of re-describing them per package.
type StoreTestSuite struct {
	NewStore func(t *testing.T) Store
}

// RunAllTests runs the full suite against the provided store implementation.
func (s *StoreTestSuite) RunAllTests(t *testing.T) {
	t.Run("RecordRoundTrip", s.TestRecordRoundTrip)
	t.Run("DuplicateCreate", s.TestDuplicateCreate)
	t.Run("VersionConflict", s.TestVersionConflict)
	t.Run("RecordNotFound", s.TestRecordNotFound)
	t.Run("ListFilterAndPagination", s.TestListFilterAndPagination)
	t.Run("CountRecords", s.TestCountRecords)
	t.Run("RelationshipUpsert", s.TestRelationshipUpsert)
	t.Run("RelationshipEndpoints", s.TestRelationshipEndpoints)
	t.Run("RelationshipDirections", s.TestRelationshipDirections)
	t.Run("ChangeTrail", s.TestChangeTrail)
	t.Run("ConcurrentCompareAndSet", s.TestConcurrentCompareAndSet)
	t.Run("HealthCheck", s.TestHealthCheck)
}

func suiteRecord(id string, typ Type, createdAt time.Time) *Record {
	rec := &Record{
		ID:         id,
		Type:       typ,
		Status:     StatusActive,
		Content:    "suite content for " + id,
		Embedding:  []float32{0.1, 0.2, 0.3},
		Importance: 5,
		DecayRate:  0.01,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	switch typ {
	case TypeEpisodic:
		rec.Episodic = &EpisodicMemory{EmotionalValence: 0.4, Context: Properties{"where": "suite"}}
	case TypeSemantic:
		rec.Semantic = &SemanticMemory{Confidence: 0.9, Category: []string{"test"}}
	case TypeProcedural:
		rec.Procedural = &ProceduralMemory{Steps: []Properties{{"run": "step one"}}}
	case TypeStrategic:
		rec.Strategic = &StrategicMemory{PatternDescription: "suite pattern", ConfidenceScore: 0.6}
	}
	return rec
}

func suiteCreate(t *testing.T, store Store, rec *Record) {
	t.Helper()

	ch := newChange("ch-create-"+rec.ID, rec.ID, rec.CreatedAt, ChangeCreate, nil, createSnapshot(rec, Decision{Importance: rec.Importance}))
	if err := store.CreateRecord(context.Background(), rec, ch); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
}

// TestRecordRoundTrip checks that every field survives a write and read.
func (s *StoreTestSuite) TestRecordRoundTrip(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	accessed := now.Add(-time.Hour)

	rec := suiteRecord("rt-1", TypeSemantic, now)
	rec.AccessCount = 3
	rec.LastAccessed = &accessed
	suiteCreate(t, store, rec)

	if rec.Version != 1 {
		t.Errorf("expected version 1 after create, got %d", rec.Version)
	}

	got, err := store.GetRecord(ctx, "rt-1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.Content != rec.Content || got.Type != TypeSemantic || got.Status != StatusActive {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Importance != 5 || got.DecayRate != 0.01 || got.AccessCount != 3 {
		t.Errorf("scalar fields did not survive: %+v", got)
	}
	if len(got.Embedding) != 3 || got.Embedding[1] != 0.2 {
		t.Errorf("embedding did not survive: %v", got.Embedding)
	}
	if got.LastAccessed == nil || !got.LastAccessed.Equal(accessed) {
		t.Errorf("LastAccessed did not survive: %v", got.LastAccessed)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt did not survive: %v vs %v", got.CreatedAt, now)
	}
	if got.Semantic == nil || got.Semantic.Confidence != 0.9 {
		t.Errorf("subtype payload did not survive: %+v", got.Semantic)
	}
	if got.Version != 1 {
		t.Errorf("expected stored version 1, got %d", got.Version)
	}
}

// TestDuplicateCreate checks that a second create of the same id conflicts.
func (s *StoreTestSuite) TestDuplicateCreate(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	now := time.Now().UTC()
	suiteCreate(t, store, suiteRecord("dup-1", TypeEpisodic, now))

	dup := suiteRecord("dup-1", TypeEpisodic, now)
	ch := newChange("ch-dup", dup.ID, now, ChangeCreate, nil, createSnapshot(dup, Decision{}))
	err := store.CreateRecord(context.Background(), dup, ch)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError, got %v", err)
	}
}

// TestVersionConflict checks the compare-and-set guard.
func (s *StoreTestSuite) TestVersionConflict(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	suiteCreate(t, store, suiteRecord("cas-1", TypeSemantic, now))

	a, err := store.GetRecord(ctx, "cas-1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.GetRecord(ctx, "cas-1")
	if err != nil {
		t.Fatal(err)
	}

	a.Importance = 7
	if err := store.UpdateRecord(ctx, a, newChange("ch-a", "cas-1", now, ChangeAccess, nil, nil)); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if a.Version != 2 {
		t.Errorf("expected version 2 after update, got %d", a.Version)
	}

	b.Importance = 9
	err = store.UpdateRecord(ctx, b, newChange("ch-b", "cas-1", now, ChangeAccess, nil, nil))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError for stale writer, got %v", err)
	}

	got, _ := store.GetRecord(ctx, "cas-1")
	if got.Importance != 7 {
		t.Errorf("expected winning importance 7, got %f", got.Importance)
	}
	if got.Version != 2 {
		t.Errorf("expected version 2, got %d", got.Version)
	}
}

// TestRecordNotFound checks the missing-record errors.
func (s *StoreTestSuite) TestRecordNotFound(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	_, err := store.GetRecord(ctx, "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError from get, got %v", err)
	}

	ghost := suiteRecord("missing", TypeSemantic, now)
	err = store.UpdateRecord(ctx, ghost, newChange("ch-g", "missing", now, ChangeAccess, nil, nil))
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError from update, got %v", err)
	}
}

// TestListFilterAndPagination checks ordering, filters, and paging.
func (s *StoreTestSuite) TestListFilterAndPagination(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		typ := TypeSemantic
		if i%2 == 1 {
			typ = TypeEpisodic
		}
		suiteCreate(t, store, suiteRecord(fmt.Sprintf("list-%d", i), typ, base.Add(time.Duration(i)*time.Minute)))
	}

	all, err := store.ListRecords(ctx, RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 records, got %d", len(all))
	}
	if all[0].ID != "list-4" || all[4].ID != "list-0" {
		t.Errorf("expected newest-first order, got %s .. %s", all[0].ID, all[4].ID)
	}

	semantic, _ := store.ListRecords(ctx, RecordFilter{Type: TypeSemantic})
	if len(semantic) != 3 {
		t.Errorf("expected 3 semantic records, got %d", len(semantic))
	}

	page, _ := store.ListRecords(ctx, RecordFilter{Limit: 2, Offset: 1})
	if len(page) != 2 || page[0].ID != "list-3" || page[1].ID != "list-2" {
		t.Errorf("unexpected page: %v", page)
	}

	empty, _ := store.ListRecords(ctx, RecordFilter{Offset: 99})
	if len(empty) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(empty))
	}
}

// TestCountRecords checks filtered counting.
func (s *StoreTestSuite) TestCountRecords(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	suiteCreate(t, store, suiteRecord("count-1", TypeSemantic, now))
	suiteCreate(t, store, suiteRecord("count-2", TypeProcedural, now))

	n, err := store.CountRecords(ctx, RecordFilter{})
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}

	n, _ = store.CountRecords(ctx, RecordFilter{Type: TypeProcedural})
	if n != 1 {
		t.Errorf("expected 1 procedural, got %d", n)
	}

	n, _ = store.CountRecords(ctx, RecordFilter{Status: StatusInvalidated})
	if n != 0 {
		t.Errorf("expected 0 invalidated, got %d", n)
	}
}

// TestRelationshipUpsert checks the unique-triple upsert contract.
func (s *StoreTestSuite) TestRelationshipUpsert(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	suiteCreate(t, store, suiteRecord("rel-a", TypeSemantic, now))
	suiteCreate(t, store, suiteRecord("rel-b", TypeSemantic, now))

	first := &Relationship{
		ID: "edge-1", FromID: "rel-a", ToID: "rel-b", RelType: "supports",
		Properties: Properties{"weight": 0.4}, CreatedAt: now,
	}
	if err := store.PutRelationship(ctx, first, newChange("ch-l1", "rel-a", now, ChangeLink, nil, linkSnapshot(first))); err != nil {
		t.Fatalf("PutRelationship failed: %v", err)
	}

	second := &Relationship{
		ID: "edge-2", FromID: "rel-a", ToID: "rel-b", RelType: "supports",
		Properties: Properties{"weight": 0.9}, CreatedAt: now.Add(time.Hour),
	}
	if err := store.PutRelationship(ctx, second, newChange("ch-l2", "rel-a", now, ChangeLink, nil, linkSnapshot(second))); err != nil {
		t.Fatalf("second PutRelationship failed: %v", err)
	}
	if second.ID != "edge-1" {
		t.Errorf("expected upsert to keep edge-1, got %s", second.ID)
	}
	if !second.CreatedAt.Equal(now) {
		t.Errorf("expected original CreatedAt kept, got %v", second.CreatedAt)
	}

	rels, err := store.ListRelationships(ctx, RelationshipQuery{MemoryID: "rel-a"})
	if err != nil {
		t.Fatalf("ListRelationships failed: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("expected 1 edge after upsert, got %d", len(rels))
	}
	if w, ok := rels[0].Properties["weight"].(float64); !ok || w != 0.9 {
		t.Errorf("expected refreshed weight 0.9, got %v", rels[0].Properties["weight"])
	}

	// A different type between the same pair is a separate edge.
	third := &Relationship{ID: "edge-3", FromID: "rel-a", ToID: "rel-b", RelType: "contradicts", CreatedAt: now}
	if err := store.PutRelationship(ctx, third, nil); err != nil {
		t.Fatalf("typed edge failed: %v", err)
	}
	rels, _ = store.ListRelationships(ctx, RelationshipQuery{MemoryID: "rel-a"})
	if len(rels) != 2 {
		t.Errorf("expected 2 edges of distinct types, got %d", len(rels))
	}
}

// TestRelationshipEndpoints checks endpoint existence enforcement.
func (s *StoreTestSuite) TestRelationshipEndpoints(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	suiteCreate(t, store, suiteRecord("ep-a", TypeSemantic, now))

	rel := &Relationship{ID: "edge-x", FromID: "ep-a", ToID: "ep-ghost", RelType: "supports", CreatedAt: now}
	err := store.PutRelationship(ctx, rel, nil)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for missing endpoint, got %v", err)
	}

	rel = &Relationship{ID: "edge-y", FromID: "ep-ghost", ToID: "ep-a", RelType: "supports", CreatedAt: now}
	if err := store.PutRelationship(ctx, rel, nil); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for missing from endpoint, got %v", err)
	}
}

// TestRelationshipDirections checks directional queries.
func (s *StoreTestSuite) TestRelationshipDirections(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"dir-a", "dir-b", "dir-c"} {
		suiteCreate(t, store, suiteRecord(id, TypeSemantic, now))
	}

	store.PutRelationship(ctx, &Relationship{ID: "e1", FromID: "dir-a", ToID: "dir-b", RelType: "supports", CreatedAt: now}, nil)
	store.PutRelationship(ctx, &Relationship{ID: "e2", FromID: "dir-c", ToID: "dir-a", RelType: "contradicts", CreatedAt: now.Add(time.Second)}, nil)

	out, err := store.ListRelationships(ctx, RelationshipQuery{MemoryID: "dir-a", Direction: DirectionOutgoing})
	if err != nil {
		t.Fatalf("ListRelationships failed: %v", err)
	}
	if len(out) != 1 || out[0].ToID != "dir-b" {
		t.Errorf("unexpected outgoing edges: %v", out)
	}

	in, _ := store.ListRelationships(ctx, RelationshipQuery{MemoryID: "dir-a", Direction: DirectionIncoming})
	if len(in) != 1 || in[0].FromID != "dir-c" {
		t.Errorf("unexpected incoming edges: %v", in)
	}

	both, _ := store.ListRelationships(ctx, RelationshipQuery{MemoryID: "dir-a", Direction: DirectionBoth})
	if len(both) != 2 {
		t.Errorf("expected 2 edges, got %d", len(both))
	}

	typed, _ := store.ListRelationships(ctx, RelationshipQuery{MemoryID: "dir-a", RelType: "supports"})
	if len(typed) != 1 {
		t.Errorf("expected 1 supports edge, got %d", len(typed))
	}
}

// TestChangeTrail checks per-memory contiguous sequences and atomicity with
// the triggering mutation.
func (s *StoreTestSuite) TestChangeTrail(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	suiteCreate(t, store, suiteRecord("trail-1", TypeSemantic, now))
	suiteCreate(t, store, suiteRecord("trail-2", TypeSemantic, now))

	for i := 0; i < 3; i++ {
		cur, err := store.GetRecord(ctx, "trail-1")
		if err != nil {
			t.Fatal(err)
		}
		cur.AccessCount++
		ch := newChange(fmt.Sprintf("ch-t-%d", i), "trail-1", now.Add(time.Duration(i)*time.Second), ChangeAccess,
			Properties{"access_count": i}, Properties{"access_count": i + 1})
		if err := store.UpdateRecord(ctx, cur, ch); err != nil {
			t.Fatal(err)
		}
	}

	trail, err := store.Changes(ctx, "trail-1")
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(trail) != 4 {
		t.Fatalf("expected 4 changes, got %d", len(trail))
	}
	for i, ch := range trail {
		if ch.Sequence != uint64(i+1) {
			t.Errorf("expected sequence %d, got %d", i+1, ch.Sequence)
		}
		if ch.MemoryID != "trail-1" {
			t.Errorf("expected memory trail-1, got %s", ch.MemoryID)
		}
	}
	if trail[0].Change != ChangeCreate || trail[1].Change != ChangeAccess {
		t.Errorf("unexpected change kinds: %s, %s", trail[0].Change, trail[1].Change)
	}

	other, _ := store.Changes(ctx, "trail-2")
	if len(other) != 1 || other[0].Sequence != 1 {
		t.Errorf("expected independent trail with one entry, got %v", other)
	}

	none, err := store.Changes(ctx, "trail-ghost")
	if err != nil {
		t.Fatalf("Changes for unknown memory failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty trail, got %d", len(none))
	}
}

// TestConcurrentCompareAndSet checks that contended writers serialize through
// version checks without losing updates.
func (s *StoreTestSuite) TestConcurrentCompareAndSet(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	suiteCreate(t, store, suiteRecord("cc-1", TypeSemantic, now))

	const writers = 4
	const updatesEach = 5

	var wg sync.WaitGroup
	failures := make(chan error, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for u := 0; u < updatesEach; u++ {
				for {
					cur, err := store.GetRecord(ctx, "cc-1")
					if err != nil {
						failures <- err
						return
					}
					cur.AccessCount++
					ch := newChange(fmt.Sprintf("ch-cc-%d-%d-%d", w, u, cur.Version), "cc-1", now, ChangeAccess, nil, nil)
					err = store.UpdateRecord(ctx, cur, ch)
					if err == nil {
						break
					}
					var conflict *ConflictError
					if !errors.As(err, &conflict) {
						failures <- err
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
	close(failures)

	for err := range failures {
		t.Fatalf("concurrent writer failed: %v", err)
	}

	got, err := store.GetRecord(ctx, "cc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessCount != writers*updatesEach {
		t.Errorf("lost updates: expected access count %d, got %d", writers*updatesEach, got.AccessCount)
	}
	if got.Version != uint64(writers*updatesEach+1) {
		t.Errorf("expected version %d, got %d", writers*updatesEach+1, got.Version)
	}

	trail, _ := store.Changes(ctx, "cc-1")
	if len(trail) != writers*updatesEach+1 {
		t.Errorf("expected %d changes, got %d", writers*updatesEach+1, len(trail))
	}
	for i, ch := range trail {
		if ch.Sequence != uint64(i+1) {
			t.Errorf("sequence gap at %d: got %d", i, ch.Sequence)
			break
		}
	}
}

// TestHealthCheck checks the reachability probe.
func (s *StoreTestSuite) TestHealthCheck(t *testing.T) {
	store := s.NewStore(t)
	defer store.Close()

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy store, got %v", err)
	}
}
