package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/engramhq/engram/config"
)

func testPruneConfig() config.PruneConfig {
	return config.PruneConfig{
		Enabled:             true,
		Interval:            time.Hour,
		ArchiveThreshold:    0.2,
		InvalidateThreshold: 0.05,
	}
}

func setupTestPruner(t *testing.T, cfg config.PruneConfig) (*Pruner, *MemStore) {
	t.Helper()
	store := NewMemStore()
	return NewPruner(store, NewScorer(0), cfg, 3), store
}

// lowRecord stores an active record whose fresh score equals importance, so
// thresholds can be exercised without waiting for decay.
func lowRecord(t *testing.T, s Store, id string, importance float64) *Record {
	t.Helper()

	rec := testRecord(id, TypeSemantic, time.Now().Add(-48*time.Hour))
	rec.Importance = importance
	rec.DecayRate = 1e-9
	mustCreate(t, s, rec)
	return rec
}

func archiveRecord(t *testing.T, s Store, id string, archivedAt time.Time) {
	t.Helper()

	ctx := context.Background()
	cur, err := s.GetRecord(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	cur.Status = StatusArchived
	cur.ArchivedAt = &archivedAt
	oldVal, newVal := transitionSnapshots(StatusActive, StatusArchived, 0)
	if err := s.UpdateRecord(ctx, cur, newChange("ch-arch-"+id, id, archivedAt, ChangeArchive, oldVal, newVal)); err != nil {
		t.Fatal(err)
	}
}

// failUpdateStore refuses writes for one record id.
type failUpdateStore struct {
	Store
	failID string
}

func (f *failUpdateStore) UpdateRecord(ctx context.Context, rec *Record, change *ChangeRecord) error {
	if rec.ID == f.failID {
		return errors.New("backend write refused")
	}
	return f.Store.UpdateRecord(ctx, rec, change)
}

func TestPruner_ArchivesBelowThreshold(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	ctx := context.Background()

	lowRecord(t, store, "weak", 0.1)
	lowRecord(t, store, "strong", 5.0)

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Archived != 1 {
		t.Errorf("expected 1 archived, got %d", res.Archived)
	}
	if res.Invalidated != 0 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	weak, _ := store.GetRecord(ctx, "weak")
	if weak.Status != StatusArchived {
		t.Errorf("expected weak record archived, got %s", weak.Status)
	}
	if weak.ArchivedAt == nil {
		t.Error("expected ArchivedAt to be stamped")
	}

	strong, _ := store.GetRecord(ctx, "strong")
	if strong.Status != StatusActive {
		t.Errorf("expected strong record untouched, got %s", strong.Status)
	}

	trail, _ := store.Changes(ctx, "weak")
	last := trail[len(trail)-1]
	if last.Change != ChangeArchive {
		t.Errorf("expected archive change, got %s", last.Change)
	}
	if last.OldValue["status"] != string(StatusActive) || last.NewValue["status"] != string(StatusArchived) {
		t.Errorf("unexpected transition snapshot: %v -> %v", last.OldValue, last.NewValue)
	}
}

func TestPruner_AccessGraceSkips(t *testing.T) {
	cfg := testPruneConfig()
	cfg.AccessGrace = time.Hour
	p, store := setupTestPruner(t, cfg)
	ctx := context.Background()

	// Created just now: inside the grace window despite the low score.
	fresh := testRecord("fresh", TypeSemantic, time.Now())
	fresh.Importance = 0.1
	mustCreate(t, store, fresh)

	// Old but recently accessed: the access resets the reference point.
	touched := lowRecord(t, store, "touched", 0.1)
	cur, _ := store.GetRecord(ctx, touched.ID)
	accessed := time.Now()
	cur.LastAccessed = &accessed
	if err := store.UpdateRecord(ctx, cur, newChange("ch-touch", cur.ID, accessed, ChangeAccess, nil, nil)); err != nil {
		t.Fatal(err)
	}

	// Old and never accessed: fair game.
	lowRecord(t, store, "stale", 0.1)

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Archived != 1 {
		t.Errorf("expected only the stale record archived, got %d", res.Archived)
	}

	stale, _ := store.GetRecord(ctx, "stale")
	if stale.Status != StatusArchived {
		t.Errorf("expected stale archived, got %s", stale.Status)
	}
	for _, id := range []string{"fresh", "touched"} {
		rec, _ := store.GetRecord(ctx, id)
		if rec.Status != StatusActive {
			t.Errorf("expected %s to stay active, got %s", id, rec.Status)
		}
	}
}

func TestPruner_NeverInvalidatesActive(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	ctx := context.Background()

	// Far below even the invalidate threshold, but active records only ever
	// move one step per sweep.
	lowRecord(t, store, "doomed", 0.01)

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Archived != 1 || res.Invalidated != 0 {
		t.Errorf("expected archive only, got %+v", res)
	}

	rec, _ := store.GetRecord(ctx, "doomed")
	if rec.Status != StatusArchived {
		t.Errorf("expected archived after first sweep, got %s", rec.Status)
	}

	// The second sweep completes the path.
	res, err = p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Invalidated != 1 {
		t.Errorf("expected 1 invalidated on second sweep, got %d", res.Invalidated)
	}

	rec, _ = store.GetRecord(ctx, "doomed")
	if rec.Status != StatusInvalidated {
		t.Errorf("expected invalidated, got %s", rec.Status)
	}
}

func TestPruner_InvalidatesArchived(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	ctx := context.Background()

	lowRecord(t, store, "old", 0.01)
	archiveRecord(t, store, "old", time.Now().Add(-72*time.Hour))

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Invalidated != 1 {
		t.Errorf("expected 1 invalidated, got %d", res.Invalidated)
	}

	rec, _ := store.GetRecord(ctx, "old")
	if rec.Status != StatusInvalidated {
		t.Errorf("expected invalidated, got %s", rec.Status)
	}

	trail, _ := store.Changes(ctx, "old")
	if trail[len(trail)-1].Change != ChangeInvalidate {
		t.Errorf("expected invalidate change, got %s", trail[len(trail)-1].Change)
	}
}

func TestPruner_ArchiveGraceSkips(t *testing.T) {
	cfg := testPruneConfig()
	cfg.ArchiveGrace = 24 * time.Hour
	p, store := setupTestPruner(t, cfg)
	ctx := context.Background()

	lowRecord(t, store, "recent", 0.01)
	archiveRecord(t, store, "recent", time.Now().Add(-time.Hour))

	lowRecord(t, store, "ripe", 0.01)
	archiveRecord(t, store, "ripe", time.Now().Add(-48*time.Hour))

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Invalidated != 1 {
		t.Errorf("expected 1 invalidated, got %d", res.Invalidated)
	}

	recent, _ := store.GetRecord(ctx, "recent")
	if recent.Status != StatusArchived {
		t.Errorf("expected recent to stay archived inside grace, got %s", recent.Status)
	}
	ripe, _ := store.GetRecord(ctx, "ripe")
	if ripe.Status != StatusInvalidated {
		t.Errorf("expected ripe invalidated, got %s", ripe.Status)
	}
}

func TestPruner_ArchivedAboveThresholdKept(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	ctx := context.Background()

	// Above the invalidate threshold: archived is a resting state, not a
	// conveyor belt.
	lowRecord(t, store, "parked", 0.1)
	archiveRecord(t, store, "parked", time.Now().Add(-72*time.Hour))

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Invalidated != 0 {
		t.Errorf("expected nothing invalidated, got %d", res.Invalidated)
	}

	rec, _ := store.GetRecord(ctx, "parked")
	if rec.Status != StatusArchived {
		t.Errorf("expected parked to stay archived, got %s", rec.Status)
	}
}

func TestPruner_Reconfigure(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	ctx := context.Background()

	lowRecord(t, store, "tunable", 0.1)

	// Lower the archive threshold below the record's score: it survives.
	cfg := testPruneConfig()
	cfg.ArchiveThreshold = 0.05
	p.Reconfigure(cfg)

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Archived != 0 {
		t.Errorf("expected nothing archived under the lowered threshold, got %d", res.Archived)
	}

	// Raise it back above the score: the next sweep catches the record.
	cfg.ArchiveThreshold = 0.5
	p.Reconfigure(cfg)

	res, err = p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Archived != 1 {
		t.Errorf("expected 1 archived under the raised threshold, got %d", res.Archived)
	}

	// A zero interval keeps the old schedule; the other fields still apply.
	cfg.Interval = 0
	cfg.AccessGrace = time.Minute
	p.Reconfigure(cfg)

	got := p.snapshotCfg()
	if got.Interval != time.Hour {
		t.Errorf("expected interval to keep its old value, got %s", got.Interval)
	}
	if got.AccessGrace != time.Minute {
		t.Errorf("expected access grace applied, got %s", got.AccessGrace)
	}
}

func TestPruner_ReconfigureWhileRunning(t *testing.T) {
	cfg := testPruneConfig()
	p, _ := setupTestPruner(t, cfg)

	p.Start(context.Background())
	cfg.Interval = time.Minute
	p.Reconfigure(cfg)
	p.Stop()

	if got := p.snapshotCfg().Interval; got != time.Minute {
		t.Errorf("expected interval applied while running, got %s", got)
	}
}

func TestPruner_FailureIsolation(t *testing.T) {
	store := NewMemStore()
	wrapped := &failUpdateStore{Store: store, failID: "poison"}
	p := NewPruner(wrapped, NewScorer(0), testPruneConfig(), 3)
	ctx := context.Background()

	lowRecord(t, store, "poison", 0.1)
	lowRecord(t, store, "fine", 0.1)

	res, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", res.Failed)
	}
	if res.Archived != 1 {
		t.Errorf("expected the healthy record archived, got %d", res.Archived)
	}

	fine, _ := store.GetRecord(ctx, "fine")
	if fine.Status != StatusArchived {
		t.Errorf("expected fine archived, got %s", fine.Status)
	}
	poison, _ := store.GetRecord(ctx, "poison")
	if poison.Status != StatusActive {
		t.Errorf("expected poison untouched, got %s", poison.Status)
	}

	stats := p.Stats()
	if stats.TotalFailed != 1 {
		t.Errorf("expected 1 total failed, got %d", stats.TotalFailed)
	}
}

func TestPruner_ReentrantGuard(t *testing.T) {
	p, _ := setupTestPruner(t, testPruneConfig())

	p.sweeping.Store(true)
	_, err := p.RunOnce(context.Background())
	if !errors.Is(err, ErrSweepRunning) {
		t.Errorf("expected ErrSweepRunning, got %v", err)
	}
	p.sweeping.Store(false)

	if _, err := p.RunOnce(context.Background()); err != nil {
		t.Errorf("expected sweep to run after guard release, got %v", err)
	}
}

func TestPruner_StatsAccumulate(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	ctx := context.Background()

	lowRecord(t, store, "a", 0.01)
	lowRecord(t, store, "b", 0.01)

	if _, err := p.RunOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := p.RunOnce(ctx); err != nil {
		t.Fatal(err)
	}

	stats := p.Stats()
	if stats.TotalArchived != 2 {
		t.Errorf("expected 2 total archived, got %d", stats.TotalArchived)
	}
	if stats.TotalInvalidated != 2 {
		t.Errorf("expected 2 total invalidated, got %d", stats.TotalInvalidated)
	}
	if stats.LastSweep.IsZero() {
		t.Error("expected LastSweep to be stamped")
	}
	if stats.Sweeping {
		t.Error("expected sweep flag cleared")
	}
}

func TestPruner_PublishesTransitionEvents(t *testing.T) {
	p, store := setupTestPruner(t, testPruneConfig())
	sink := &captureSink{}
	p.events = sink
	ctx := context.Background()

	lowRecord(t, store, "observed", 0.1)

	if _, err := p.RunOnce(ctx); err != nil {
		t.Fatal(err)
	}

	archived := sink.byChange(ChangeArchive)
	if len(archived) != 1 || archived[0].MemoryID != "observed" {
		t.Errorf("expected one archive event for observed, got %v", archived)
	}
}

func TestPruner_StartStop(t *testing.T) {
	p, _ := setupTestPruner(t, testPruneConfig())

	p.Start(context.Background())
	p.Stop()

	// Stop again is a no-op.
	p.Stop()
}

func TestPruner_RateLimiterConfigured(t *testing.T) {
	cfg := testPruneConfig()
	cfg.RatePerSecond = 100
	cfg.Burst = 10
	p, store := setupTestPruner(t, cfg)

	if p.limiter == nil {
		t.Fatal("expected limiter to be configured")
	}

	lowRecord(t, store, "paced", 0.1)
	res, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Archived != 1 {
		t.Errorf("expected 1 archived under pacing, got %d", res.Archived)
	}
}
