package memory

import (
	"context"
	"sort"
	"time"
)

const viewBatchSize = 256

// listAll pages through every record matching the filter. The filter's own
// Limit and Offset are ignored.
func (e *Engine) listAll(ctx context.Context, filter RecordFilter) ([]*Record, error) {
	var all []*Record
	for offset := 0; ; offset += viewBatchSize {
		filter.Limit = viewBatchSize
		filter.Offset = offset
		page, err := e.store.ListRecords(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < viewBatchSize {
			return all, nil
		}
	}
}

// TypeHealth aggregates the active population per memory type. Every type
// gets a row, zeroed when no active records of that type exist.
func (e *Engine) TypeHealth(ctx context.Context) ([]TypeHealth, error) {
	recs, err := e.listAll(ctx, RecordFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}

	now := e.now()
	dayAgo := now.Add(-24 * time.Hour)
	byType := make(map[Type]*TypeHealth, len(AllTypes()))
	for _, typ := range AllTypes() {
		byType[typ] = &TypeHealth{Type: typ}
	}

	for _, rec := range recs {
		h, ok := byType[rec.Type]
		if !ok {
			continue
		}
		h.Count++
		h.AvgImportance += rec.Importance
		h.AvgAccessCount += float64(rec.AccessCount)
		h.AvgRelevance += e.scorer.Score(rec, now)
		if rec.LastAccessed != nil && rec.LastAccessed.After(dayAgo) {
			h.AccessedLastDay++
		}
	}

	out := make([]TypeHealth, 0, len(AllTypes()))
	for _, typ := range AllTypes() {
		h := byType[typ]
		if h.Count > 0 {
			n := float64(h.Count)
			h.AvgImportance /= n
			h.AvgAccessCount /= n
			h.AvgRelevance /= n
		}
		out = append(out, *h)
	}
	return out, nil
}

// ProcedureRanking ranks active procedural memories by success rate, then
// importance, both descending. A non-positive limit defaults to 20.
func (e *Engine) ProcedureRanking(ctx context.Context, limit int) ([]ProcedureStats, error) {
	if limit <= 0 {
		limit = 20
	}

	recs, err := e.listAll(ctx, RecordFilter{Type: TypeProcedural, Status: StatusActive})
	if err != nil {
		return nil, err
	}

	now := e.now()
	stats := make([]ProcedureStats, 0, len(recs))
	for _, rec := range recs {
		if rec.Procedural == nil {
			continue
		}
		stats = append(stats, ProcedureStats{
			MemoryID:       rec.ID,
			Content:        rec.Content,
			SuccessRate:    rec.Procedural.SuccessRate(),
			TotalAttempts:  rec.Procedural.TotalAttempts,
			Importance:     rec.Importance,
			RelevanceScore: e.scorer.Score(rec, now),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].SuccessRate != stats[j].SuccessRate {
			return stats[i].SuccessRate > stats[j].SuccessRate
		}
		return stats[i].Importance > stats[j].Importance
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}
