package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/engramhq/engram/config"
)

// Engine drives the memory lifecycle: staging into the working buffer,
// consolidation into typed long-term records, reinforcement on access,
// relationship tracking, and background pruning. All mutations are
// optimistic: contended writes retry against fresh state up to the
// configured bound and then surface a ConflictError.
type Engine struct {
	mu sync.RWMutex

	cfg      *config.MemoryConfig
	store    Store
	buffer   Buffer
	scorer   *Scorer
	graph    *Graph
	pruner   *Pruner
	searcher Searcher
	indexer  Indexer
	events   EventSink
	metrics  MetricsRecorder
	logger   engineLogger
	idgen    func() string
	now      func() time.Time

	started   bool
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// engineLogger is the minimal logger interface used by the Engine.
type engineLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopEngineLogger is a no-op logger.
type nopEngineLogger struct{}

func (n *nopEngineLogger) Debug(msg string, args ...any) {}
func (n *nopEngineLogger) Info(msg string, args ...any)  {}
func (n *nopEngineLogger) Warn(msg string, args ...any)  {}
func (n *nopEngineLogger) Error(msg string, args ...any) {}

// New creates an Engine over the given store and working buffer. A nil store
// falls back to an in-memory store and a nil buffer to a local buffer, which
// keeps tests and ephemeral deployments dependency-free.
func New(cfg *config.MemoryConfig, store Store, buffer Buffer, opts ...Option) *Engine {
	if cfg == nil {
		d := config.DefaultConfig()
		cfg = &d.Memory
	}
	if store == nil {
		store = NewMemStore()
	}
	if buffer == nil {
		buffer = NewLocalBuffer(cfg.Buffer.Capacity)
	}

	e := &Engine{
		cfg:     cfg,
		store:   store,
		buffer:  buffer,
		scorer:  NewScorer(cfg.ReinforcementWeight),
		indexer: &nopIndexer{},
		events:  &nopEventSink{},
		metrics: &nopMetricsRecorder{},
		logger:  &nopEngineLogger{},
		idgen:   uuid.NewString,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.graph = NewGraph(store, e.idgen, e.now)

	e.pruner = NewPruner(store, e.scorer, cfg.Prune, cfg.MaxRetries)
	e.pruner.logger = e.logger
	e.pruner.metrics = e.metrics
	e.pruner.events = e.events
	e.pruner.indexer = e.indexer
	e.pruner.idgen = e.idgen
	e.pruner.now = e.now

	return e
}

// Start launches the background pruning sweep and the buffer janitor.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}

	e.logger.Info("starting memory engine",
		"embedding_dimension", e.cfg.EmbeddingDimension,
		"prune_enabled", e.cfg.Prune.Enabled,
		"prune_interval", e.cfg.Prune.Interval,
	)

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	if e.cfg.Prune.Enabled && e.cfg.Prune.Interval > 0 {
		e.pruner.Start(runCtx)
	}

	go e.janitorLoop(runCtx)

	e.started = true
	e.startedAt = e.now()

	e.logger.Info("memory engine started")
	return nil
}

// Stop gracefully shuts down the background work. The store and buffer stay
// open; their owner closes them.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil
	}

	e.logger.Info("stopping memory engine")
	e.pruner.Stop()
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
	e.started = false
	e.logger.Info("memory engine stopped")
	return nil
}

// janitorLoop reaps expired working items and keeps the buffer depth gauge
// fresh.
func (e *Engine) janitorLoop(ctx context.Context) {
	defer close(e.done)

	if e.cfg.Buffer.JanitorInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(e.cfg.Buffer.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.reapBuffer(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) reapBuffer(ctx context.Context) {
	reaped, err := e.buffer.Expire(ctx)
	if err != nil {
		e.logger.Warn("working buffer reap failed", "error", err)
		return
	}
	if reaped > 0 {
		e.logger.Debug("expired working items reaped", "count", reaped)
	}
	if depth, err := e.buffer.Len(ctx); err == nil {
		e.metrics.SetBufferDepth(depth)
	}
}

// Ingest stages a candidate memory in the working buffer. The returned item
// carries the assigned id and expiry.
func (e *Engine) Ingest(ctx context.Context, item *WorkingItem) (*WorkingItem, error) {
	if item == nil {
		return nil, &ValidationError{Field: "item", Reason: "must not be nil"}
	}
	if item.Content == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if err := validateEmbedding(item.Embedding, e.cfg.EmbeddingDimension); err != nil {
		return nil, err
	}

	staged := cloneItem(item)
	if staged.ID == "" {
		staged.ID = e.idgen()
	}
	now := e.now()
	staged.CreatedAt = now
	if staged.ExpiresAt == nil && e.cfg.Buffer.DefaultTTL > 0 {
		expiry := now.Add(e.cfg.Buffer.DefaultTTL)
		staged.ExpiresAt = &expiry
	}

	if err := e.buffer.Put(ctx, staged); err != nil {
		return nil, err
	}

	e.logger.Debug("working item staged", "item_id", staged.ID)
	return staged, nil
}

// Working lists the unexpired items currently staged in the buffer.
func (e *Engine) Working(ctx context.Context) ([]*WorkingItem, error) {
	return e.buffer.List(ctx)
}

// GetWorking returns one staged item by id.
func (e *Engine) GetWorking(ctx context.Context, id string) (*WorkingItem, error) {
	return e.buffer.Get(ctx, id)
}

// DiscardWorking removes a staged item without consolidating it.
func (e *Engine) DiscardWorking(ctx context.Context, id string) error {
	if _, err := e.buffer.Take(ctx, id); err != nil {
		if errors.Is(err, ErrItemTaken) {
			return &NotFoundError{EntityType: "working item", ID: id}
		}
		return err
	}
	e.logger.Debug("working item discarded", "item_id", id)
	return nil
}

// Consolidate promotes a staged item into a long-term record of the given
// type. The item is consumed exactly once: concurrent consolidations of the
// same item leave one winner and the rest receive a ConsolidationError.
// Validation runs before the item is consumed, so invalid input leaves the
// item in the buffer.
func (e *Engine) Consolidate(ctx context.Context, itemID string, typ Type, payload SubtypePayload, decision Decision) (*Record, error) {
	ctx, span := lifecycleTracer().Start(ctx, spanConsolidate)
	defer span.End()

	if itemID == "" {
		return nil, &ValidationError{Field: "item_id", Reason: "must not be empty"}
	}
	if err := validatePayload(typ, payload); err != nil {
		return nil, err
	}
	if err := validateDecision(decision); err != nil {
		return nil, err
	}

	item, err := e.buffer.Take(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemTaken) {
			return nil, &ConsolidationError{ItemID: itemID, Reason: "working item unavailable"}
		}
		return nil, fmt.Errorf("memory: take working item: %w", err)
	}

	now := e.now()
	rec := &Record{
		ID:         e.idgen(),
		Type:       typ,
		Status:     StatusActive,
		Content:    item.Content,
		Embedding:  item.Embedding,
		Importance: decision.Importance,
		DecayRate:  decision.DecayRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rec.DecayRate <= 0 {
		rec.DecayRate = e.cfg.DefaultDecayRate
	}
	if rec.DecayRate <= 0 {
		rec.DecayRate = DefaultDecayRate
	}
	attachPayload(rec, payload)

	if err := validateRecord(rec); err != nil {
		return nil, &ConsolidationError{ItemID: itemID, Reason: err.Error()}
	}

	ch := newChange(e.idgen(), rec.ID, now, ChangeCreate, nil, createSnapshot(rec, decision))
	if err := e.store.CreateRecord(ctx, rec, ch); err != nil {
		return nil, fmt.Errorf("memory: create record: %w", err)
	}

	if err := e.indexer.Index(rec); err != nil {
		e.logger.Warn("failed to index record", "memory_id", rec.ID, "error", err)
	}
	e.metrics.RecordConsolidation(string(typ))
	e.events.Publish(ctx, Event{MemoryID: rec.ID, Type: typ, Change: ChangeCreate, At: now})
	e.logger.Info("working item consolidated",
		"item_id", itemID,
		"memory_id", rec.ID,
		"type", typ,
		"importance", rec.Importance,
	)
	return rec, nil
}

// attachPayload sets the subtype pointer matching the payload's concrete
// type. validatePayload has already ensured the payload matches the record
// type.
func attachPayload(rec *Record, payload SubtypePayload) {
	switch p := payload.(type) {
	case *EpisodicMemory:
		rec.Episodic = p
	case *SemanticMemory:
		rec.Semantic = p
	case *ProceduralMemory:
		rec.Procedural = p
	case *StrategicMemory:
		rec.Strategic = p
	}
}

// Get returns a record with its relevance derived at call time. Reading
// never mutates: use Reinforce to register a meaningful access.
func (e *Engine) Get(ctx context.Context, id string) (*ScoredRecord, error) {
	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ScoredRecord{Record: rec, RelevanceScore: e.scorer.Score(rec, e.now())}, nil
}

// List returns records matching the filter, newest first, each scored at
// call time.
func (e *Engine) List(ctx context.Context, filter RecordFilter) ([]*ScoredRecord, error) {
	recs, err := e.store.ListRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := e.now()
	out := make([]*ScoredRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &ScoredRecord{Record: rec, RelevanceScore: e.scorer.Score(rec, now)})
	}
	return out, nil
}

// Count returns the number of records matching the filter's type and
// status. Limit and offset are ignored.
func (e *Engine) Count(ctx context.Context, filter RecordFilter) (int, error) {
	return e.store.CountRecords(ctx, RecordFilter{Type: filter.Type, Status: filter.Status})
}

// mutate applies fn to a fresh copy of the record and writes it back under
// optimistic concurrency. fn receives the copy to change in place and
// returns the change entry to append in the same transaction. Conflicts
// re-read and re-apply until the write lands or retries run out.
func (e *Engine) mutate(ctx context.Context, id, op string, fn func(next *Record, now time.Time) (*ChangeRecord, error)) (*Record, error) {
	for attempt := 0; attempt < e.cfg.MaxRetries; attempt++ {
		rec, err := e.store.GetRecord(ctx, id)
		if err != nil {
			return nil, err
		}

		next := cloneRecord(rec)
		now := e.now()
		ch, err := fn(next, now)
		if err != nil {
			return nil, err
		}

		if err := e.store.UpdateRecord(ctx, next, ch); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				e.metrics.RecordConflictRetry(op)
				continue
			}
			return nil, err
		}
		return next, nil
	}
	return nil, &ConflictError{MemoryID: id, Attempts: e.cfg.MaxRetries}
}

// Reinforce registers a meaningful access: the access count increments and
// importance grows logarithmically, damping repeated hits.
func (e *Engine) Reinforce(ctx context.Context, id string) (*ScoredRecord, error) {
	ctx, span := lifecycleTracer().Start(ctx, spanReinforce)
	defer span.End()

	rec, err := e.mutate(ctx, id, "reinforce", func(next *Record, now time.Time) (*ChangeRecord, error) {
		if next.Status != StatusActive {
			return nil, &ValidationError{Field: "status", Reason: "only active memories can be reinforced"}
		}
		delta := e.scorer.Reinforce(next, now)
		next.UpdatedAt = now
		oldVal, newVal := accessSnapshots(delta, now)
		return newChange(e.idgen(), next.ID, now, ChangeAccess, oldVal, newVal), nil
	})
	if err != nil {
		return nil, err
	}

	now := e.now()
	e.metrics.RecordReinforcement(string(rec.Type))
	e.events.Publish(ctx, Event{MemoryID: rec.ID, Type: rec.Type, Change: ChangeAccess, At: now})
	e.logger.Debug("memory reinforced",
		"memory_id", rec.ID,
		"access_count", rec.AccessCount,
		"importance", rec.Importance,
	)
	return &ScoredRecord{Record: rec, RelevanceScore: e.scorer.Score(rec, now)}, nil
}

// RecordAttempt folds one execution outcome into a procedural memory's
// success counters, running mean duration, and failure points.
func (e *Engine) RecordAttempt(ctx context.Context, id string, outcome AttemptOutcome) (*Record, error) {
	if outcome.Duration < 0 {
		return nil, &ValidationError{Field: "duration", Reason: "must not be negative"}
	}

	rec, err := e.mutate(ctx, id, "attempt", func(next *Record, now time.Time) (*ChangeRecord, error) {
		if next.Type != TypeProcedural || next.Procedural == nil {
			return nil, &ValidationError{Field: "type", Reason: "attempts apply to procedural memories only"}
		}
		if next.Status != StatusActive {
			return nil, &ValidationError{Field: "status", Reason: "only active memories accept attempts"}
		}

		before := cloneProcedural(next.Procedural)
		proc := next.Procedural
		proc.TotalAttempts++
		if outcome.Success {
			proc.SuccessCount++
		}
		if outcome.Duration > 0 {
			proc.AverageDuration += (outcome.Duration - proc.AverageDuration) / time.Duration(proc.TotalAttempts)
		}
		if !outcome.Success && outcome.FailurePoint != "" {
			proc.FailurePoints = append(proc.FailurePoints, outcome.FailurePoint)
		}
		next.UpdatedAt = now

		oldVal, newVal := attemptSnapshots(before, proc, outcome)
		return newChange(e.idgen(), next.ID, now, ChangeAttempt, oldVal, newVal), nil
	})
	if err != nil {
		return nil, err
	}

	e.events.Publish(ctx, Event{MemoryID: rec.ID, Type: rec.Type, Change: ChangeAttempt, At: e.now()})
	e.logger.Debug("attempt recorded",
		"memory_id", rec.ID,
		"success", outcome.Success,
		"total_attempts", rec.Procedural.TotalAttempts,
	)
	return rec, nil
}

// ValidateSemantic re-grades a semantic memory's confidence and stamps the
// validation time. A non-empty source is appended to the references.
func (e *Engine) ValidateSemantic(ctx context.Context, id string, confidence float64, source string) (*Record, error) {
	if confidence < 0 || confidence > 1 {
		return nil, &ValidationError{Field: "confidence", Reason: "must be within [0, 1]"}
	}

	rec, err := e.mutate(ctx, id, "validate", func(next *Record, now time.Time) (*ChangeRecord, error) {
		if next.Type != TypeSemantic || next.Semantic == nil {
			return nil, &ValidationError{Field: "type", Reason: "validation applies to semantic memories only"}
		}
		if next.Status != StatusActive {
			return nil, &ValidationError{Field: "status", Reason: "only active memories can be validated"}
		}

		before := cloneSemantic(next.Semantic)
		sem := next.Semantic
		sem.Confidence = confidence
		validatedAt := now
		sem.LastValidated = &validatedAt
		if source != "" {
			sem.SourceReferences = append(sem.SourceReferences, source)
		}
		next.UpdatedAt = now

		oldVal, newVal := validationSnapshots(before, sem)
		return newChange(e.idgen(), next.ID, now, ChangeValidate, oldVal, newVal), nil
	})
	if err != nil {
		return nil, err
	}

	e.events.Publish(ctx, Event{MemoryID: rec.ID, Type: rec.Type, Change: ChangeValidate, At: e.now()})
	e.logger.Debug("semantic memory validated", "memory_id", rec.ID, "confidence", confidence)
	return rec, nil
}

// Link creates or refreshes a typed relationship between two memories and
// logs the change against the source memory.
func (e *Engine) Link(ctx context.Context, fromID, toID, relType string, properties Properties) (*Relationship, error) {
	rel, err := e.graph.Link(ctx, fromID, toID, relType, properties)
	if err != nil {
		return nil, err
	}

	e.events.Publish(ctx, Event{MemoryID: fromID, Change: ChangeLink, At: rel.CreatedAt})
	e.logger.Debug("memories linked",
		"from_id", fromID,
		"to_id", toID,
		"relationship_type", relType,
	)
	return rel, nil
}

// Links returns the memory's relationships in creation order.
func (e *Engine) Links(ctx context.Context, memoryID string, direction Direction, relType string) ([]*Relationship, error) {
	if _, err := e.store.GetRecord(ctx, memoryID); err != nil {
		return nil, err
	}

	rels := make([]*Relationship, 0, 8)
	for rel, err := range e.graph.Query(ctx, memoryID, direction, relType) {
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// History returns the memory's append-only audit trail ordered by sequence.
func (e *Engine) History(ctx context.Context, memoryID string) ([]*ChangeRecord, error) {
	if _, err := e.store.GetRecord(ctx, memoryID); err != nil {
		return nil, err
	}
	return e.store.Changes(ctx, memoryID)
}

// Recall searches by embedding similarity and reinforces every hit: recalled
// memories are accessed memories. Hits whose reinforcement races a
// concurrent writer are returned unreinforced rather than dropped.
func (e *Engine) Recall(ctx context.Context, embedding []float32, k int, filter SearchFilter) ([]RecallResult, error) {
	ctx, span := lifecycleTracer().Start(ctx, spanRecall)
	defer span.End()

	if e.searcher == nil {
		return nil, ErrNoSearcher
	}
	if len(embedding) == 0 {
		return nil, &ValidationError{Field: "embedding", Reason: "must not be empty"}
	}
	if err := validateEmbedding(embedding, e.cfg.EmbeddingDimension); err != nil {
		return nil, err
	}
	if filter.Status == "" {
		filter.Status = StatusActive
	}

	hits, err := e.searcher.Search(ctx, embedding, k, filter)
	if err != nil {
		return nil, err
	}

	results := make([]RecallResult, 0, len(hits))
	for _, hit := range hits {
		sr, err := e.Reinforce(ctx, hit.MemoryID)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				e.logger.Warn("recall hit no longer exists", "memory_id", hit.MemoryID)
				continue
			}
			e.logger.Warn("failed to reinforce recalled memory", "memory_id", hit.MemoryID, "error", err)
			sr, err = e.Get(ctx, hit.MemoryID)
			if err != nil {
				continue
			}
		}
		results = append(results, RecallResult{
			Record:         sr.Record,
			Distance:       hit.Distance,
			RelevanceScore: sr.RelevanceScore,
		})
	}
	return results, nil
}

// Search runs a read-only embedding similarity query. Unlike Recall it never
// reinforces.
func (e *Engine) Search(ctx context.Context, embedding []float32, k int, filter SearchFilter) ([]RecallResult, error) {
	if e.searcher == nil {
		return nil, ErrNoSearcher
	}
	if len(embedding) == 0 {
		return nil, &ValidationError{Field: "embedding", Reason: "must not be empty"}
	}
	if err := validateEmbedding(embedding, e.cfg.EmbeddingDimension); err != nil {
		return nil, err
	}
	if filter.Status == "" {
		filter.Status = StatusActive
	}

	hits, err := e.searcher.Search(ctx, embedding, k, filter)
	if err != nil {
		return nil, err
	}
	return e.resolveHits(ctx, hits), nil
}

// SearchText runs a read-only fuzzy text query over record content.
func (e *Engine) SearchText(ctx context.Context, query string, limit int, filter SearchFilter) ([]RecallResult, error) {
	if e.searcher == nil {
		return nil, ErrNoSearcher
	}
	if query == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if filter.Status == "" {
		filter.Status = StatusActive
	}

	hits, err := e.searcher.SearchText(ctx, query, limit, filter)
	if err != nil {
		return nil, err
	}
	return e.resolveHits(ctx, hits), nil
}

// resolveHits loads each hit's record and scores it. Hits that vanished
// since indexing are dropped.
func (e *Engine) resolveHits(ctx context.Context, hits []SearchHit) []RecallResult {
	results := make([]RecallResult, 0, len(hits))
	for _, hit := range hits {
		sr, err := e.Get(ctx, hit.MemoryID)
		if err != nil {
			e.logger.Warn("search hit no longer exists", "memory_id", hit.MemoryID)
			continue
		}
		results = append(results, RecallResult{
			Record:         sr.Record,
			Distance:       hit.Distance,
			RelevanceScore: sr.RelevanceScore,
		})
	}
	return results
}

// Sweep triggers a single pruning pass immediately, independent of the
// background schedule.
func (e *Engine) Sweep(ctx context.Context) (*SweepResult, error) {
	return e.pruner.RunOnce(ctx)
}

// PrunerStats returns cumulative pruning counters.
func (e *Engine) PrunerStats() PrunerStats {
	return e.pruner.Stats()
}

// ApplyPruneConfig retunes the background sweep at runtime. Only the sweep
// interval, thresholds, and grace windows are applied; enabling or disabling
// the sweep requires a restart.
func (e *Engine) ApplyPruneConfig(cfg config.PruneConfig) {
	e.pruner.Reconfigure(cfg)
}

// IsHealthy reports whether the backing store answers.
func (e *Engine) IsHealthy(ctx context.Context) bool {
	return e.store.HealthCheck(ctx) == nil
}

// IsReady reports whether the engine is started and healthy.
func (e *Engine) IsReady(ctx context.Context) bool {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()
	return started && e.IsHealthy(ctx)
}

// EngineStatus is a point-in-time operational snapshot.
type EngineStatus struct {
	Started     bool        `json:"started"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	Active      int         `json:"active_records"`
	Archived    int         `json:"archived_records"`
	Invalidated int         `json:"invalidated_records"`
	BufferDepth int         `json:"buffer_depth"`
	Pruner      PrunerStats `json:"pruner"`
}

// Status assembles an operational snapshot of the engine.
func (e *Engine) Status(ctx context.Context) (*EngineStatus, error) {
	e.mu.RLock()
	status := &EngineStatus{Started: e.started}
	if e.started {
		startedAt := e.startedAt
		status.StartedAt = &startedAt
	}
	e.mu.RUnlock()

	var err error
	if status.Active, err = e.store.CountRecords(ctx, RecordFilter{Status: StatusActive}); err != nil {
		return nil, err
	}
	if status.Archived, err = e.store.CountRecords(ctx, RecordFilter{Status: StatusArchived}); err != nil {
		return nil, err
	}
	if status.Invalidated, err = e.store.CountRecords(ctx, RecordFilter{Status: StatusInvalidated}); err != nil {
		return nil, err
	}
	if status.BufferDepth, err = e.buffer.Len(ctx); err != nil {
		return nil, err
	}
	status.Pruner = e.pruner.Stats()
	return status, nil
}
