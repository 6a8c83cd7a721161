package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/engramhq/engram/config"
)

// sweepBatchSize is the page size used when collecting sweep candidates.
const sweepBatchSize = 256

// Pruner walks stored memories and moves the ones whose relevance has decayed
// below the configured thresholds down the lifecycle: active memories are
// archived, archived memories are invalidated. It runs a background goroutine
// when started, and a single sweep can also be triggered directly.
type Pruner struct {
	store      Store
	scorer     *Scorer
	maxRetries int
	limiter    *rate.Limiter

	logger  engineLogger
	metrics MetricsRecorder
	events  EventSink
	indexer Indexer
	idgen   func() string
	now     func() time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	sweeping atomic.Bool
	wake     chan struct{}

	mu               sync.Mutex
	cfg              config.PruneConfig
	totalArchived    int64
	totalInvalidated int64
	totalFailed      int64
	lastSweep        time.Time
}

// SweepResult summarizes one completed sweep.
type SweepResult struct {
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Scanned     int       `json:"scanned"`
	Archived    int       `json:"archived"`
	Invalidated int       `json:"invalidated"`
	Failed      int       `json:"failed"`
}

// PrunerStats reports cumulative pruning counters.
type PrunerStats struct {
	TotalArchived    int64     `json:"total_archived"`
	TotalInvalidated int64     `json:"total_invalidated"`
	TotalFailed      int64     `json:"total_failed"`
	LastSweep        time.Time `json:"last_sweep"`
	Sweeping         bool      `json:"sweeping"`
}

// NewPruner creates a pruner over the given store.
func NewPruner(store Store, scorer *Scorer, cfg config.PruneConfig, maxRetries int) *Pruner {
	if scorer == nil {
		scorer = NewScorer(0)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Pruner{
		store:      store,
		scorer:     scorer,
		cfg:        cfg,
		maxRetries: maxRetries,
		limiter:    limiter,
		logger:     &nopEngineLogger{},
		metrics:    &nopMetricsRecorder{},
		events:     &nopEventSink{},
		indexer:    &nopIndexer{},
		idgen:      uuid.NewString,
		now:        time.Now,
		done:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
	}
}

// Reconfigure applies new sweep tuning at runtime. Thresholds, grace windows,
// and the sweep interval take effect on the next evaluation or tick.
// Enablement and rate pacing are fixed at construction.
func (p *Pruner) Reconfigure(cfg config.PruneConfig) {
	p.mu.Lock()
	if cfg.Interval > 0 {
		p.cfg.Interval = cfg.Interval
	}
	p.cfg.ArchiveThreshold = cfg.ArchiveThreshold
	p.cfg.InvalidateThreshold = cfg.InvalidateThreshold
	p.cfg.AccessGrace = cfg.AccessGrace
	p.cfg.ArchiveGrace = cfg.ArchiveGrace
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pruner) snapshotCfg() config.PruneConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Start launches the background sweep goroutine.
func (p *Pruner) Start(parentCtx context.Context) {
	ctx, cancel := context.WithCancel(parentCtx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		timer := time.NewTimer(p.snapshotCfg().Interval)
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				res, err := p.RunOnce(ctx)
				switch {
				case err == nil:
					if res.Archived > 0 || res.Invalidated > 0 || res.Failed > 0 {
						p.logger.Info("prune sweep finished",
							"scanned", res.Scanned,
							"archived", res.Archived,
							"invalidated", res.Invalidated,
							"failed", res.Failed,
						)
					}
				case errors.Is(err, ErrSweepRunning), errors.Is(err, context.Canceled):
				default:
					p.logger.Warn("prune sweep failed", "error", err)
				}
				timer.Reset(p.snapshotCfg().Interval)
			case <-p.wake:
				// Interval may have changed; rearm against the current value.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(p.snapshotCfg().Interval)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop gracefully stops the background sweep.
func (p *Pruner) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}

// RunOnce performs a single sweep over all active and archived memories.
// Sweeps never overlap: a call while one is in flight returns ErrSweepRunning.
// Individual memory failures are logged and counted but do not stop the
// sweep.
func (p *Pruner) RunOnce(ctx context.Context) (*SweepResult, error) {
	if !p.sweeping.CompareAndSwap(false, true) {
		return nil, ErrSweepRunning
	}
	defer p.sweeping.Store(false)

	ctx, span := lifecycleTracer().Start(ctx, spanSweep)
	defer span.End()

	res := &SweepResult{StartedAt: p.now()}

	archived, err := p.sweepPhase(ctx, StatusActive, res)
	if err != nil {
		res.FinishedAt = p.now()
		return res, err
	}
	res.Archived = archived

	invalidated, err := p.sweepPhase(ctx, StatusArchived, res)
	if err != nil {
		res.FinishedAt = p.now()
		return res, err
	}
	res.Invalidated = invalidated

	res.FinishedAt = p.now()

	p.mu.Lock()
	p.totalArchived += int64(res.Archived)
	p.totalInvalidated += int64(res.Invalidated)
	p.totalFailed += int64(res.Failed)
	p.lastSweep = res.FinishedAt
	p.mu.Unlock()

	p.metrics.RecordSweep(res.Archived, res.Invalidated, res.Failed, res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

// sweepPhase examines every record currently in the given status and returns
// how many it transitioned.
func (p *Pruner) sweepPhase(ctx context.Context, from Status, res *SweepResult) (int, error) {
	ids, err := p.collectIDs(ctx, from)
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for _, id := range ids {
		if err := p.pace(ctx); err != nil {
			return transitioned, err
		}
		res.Scanned++

		moved, err := p.evaluate(ctx, id, from)
		if err != nil {
			res.Failed++
			p.logger.Error("pruning memory failed", "memory_id", id, "error", err)
			continue
		}
		if moved {
			transitioned++
		}
	}
	return transitioned, nil
}

// collectIDs snapshots the ids of all records in the given status. Records
// are re-read and re-checked individually afterwards, so concurrent
// transitions between collection and evaluation are safe.
func (p *Pruner) collectIDs(ctx context.Context, status Status) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += sweepBatchSize {
		recs, err := p.store.ListRecords(ctx, RecordFilter{
			Status: status,
			Limit:  sweepBatchSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			ids = append(ids, rec.ID)
		}
		if len(recs) < sweepBatchSize {
			return ids, nil
		}
	}
}

func (p *Pruner) pace(ctx context.Context) error {
	if p.limiter != nil {
		return p.limiter.Wait(ctx)
	}
	return ctx.Err()
}

// plan decides whether a record should transition, based on its current
// status, grace windows, and decayed relevance. It returns the target status,
// the change type to log, and the score that justified the move.
func (p *Pruner) plan(rec *Record, now time.Time, cfg config.PruneConfig) (Status, ChangeType, float64, bool) {
	switch rec.Status {
	case StatusActive:
		ref := rec.CreatedAt
		if rec.LastAccessed != nil {
			ref = *rec.LastAccessed
		}
		if now.Sub(ref) < cfg.AccessGrace {
			return "", "", 0, false
		}
		score := p.scorer.Score(rec, now)
		if score >= cfg.ArchiveThreshold {
			return "", "", 0, false
		}
		return StatusArchived, ChangeArchive, score, true

	case StatusArchived:
		ref := rec.UpdatedAt
		if rec.ArchivedAt != nil {
			ref = *rec.ArchivedAt
		}
		if now.Sub(ref) < cfg.ArchiveGrace {
			return "", "", 0, false
		}
		score := p.scorer.Score(rec, now)
		if score >= cfg.InvalidateThreshold {
			return "", "", 0, false
		}
		return StatusInvalidated, ChangeInvalidate, score, true
	}
	return "", "", 0, false
}

// evaluate re-reads one record and applies at most one forward transition to
// it. Conflicting concurrent writers win: the record is re-read and
// re-planned until the update lands or retries run out.
func (p *Pruner) evaluate(ctx context.Context, id string, from Status) (bool, error) {
	cfg := p.snapshotCfg()
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		rec, err := p.store.GetRecord(ctx, id)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				return false, nil
			}
			return false, &PruningError{MemoryID: id, Err: err}
		}
		if rec.Status != from {
			// Someone else moved it since collection.
			return false, nil
		}

		now := p.now()
		to, change, score, ok := p.plan(rec, now, cfg)
		if !ok {
			return false, nil
		}
		if !rec.Status.CanTransitionTo(to) {
			return false, nil
		}

		next := cloneRecord(rec)
		next.Status = to
		next.UpdatedAt = now
		if to == StatusArchived {
			archivedAt := now
			next.ArchivedAt = &archivedAt
		}

		oldVal, newVal := transitionSnapshots(from, to, score)
		ch := newChange(p.idgen(), rec.ID, now, change, oldVal, newVal)

		if err := p.store.UpdateRecord(ctx, next, ch); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				p.metrics.RecordConflictRetry("prune")
				continue
			}
			return false, &PruningError{MemoryID: id, Err: err}
		}

		p.indexer.SetStatus(rec.ID, to)
		p.events.Publish(ctx, Event{MemoryID: rec.ID, Type: rec.Type, Change: change, At: now})
		p.logger.Debug("memory transitioned",
			"memory_id", rec.ID,
			"from", from,
			"to", to,
			"relevance", score,
		)
		return true, nil
	}
	return false, &PruningError{
		MemoryID: id,
		Err:      &ConflictError{MemoryID: id, Attempts: p.maxRetries},
	}
}

// Stats returns cumulative pruning counters.
func (p *Pruner) Stats() PrunerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PrunerStats{
		TotalArchived:    p.totalArchived,
		TotalInvalidated: p.totalInvalidated,
		TotalFailed:      p.totalFailed,
		LastSweep:        p.lastSweep,
		Sweeping:         p.sweeping.Load(),
	}
}
