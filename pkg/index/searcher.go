// Package index provides the in-process search capability for memory
// records: brute-force cosine similarity over embeddings and trigram
// Jaccard similarity over content, behind the same narrow interfaces an
// external search service would implement.
package index

import (
	"context"
	"sync"

	"github.com/engramhq/engram/pkg/memory"
)

const defaultLimit = 10

type recordMeta struct {
	typ    memory.Type
	status memory.Status
}

// Searcher maintains vector and text indexes over memory records and
// implements both memory.Searcher and memory.Indexer. The store stays the
// source of truth; hits are re-checked against it on read, so the index is
// allowed to run slightly behind mutations.
type Searcher struct {
	mu      sync.RWMutex
	meta    map[string]recordMeta
	vectors *VectorIndex
	text    *TrigramIndex
}

// NewSearcher creates an empty index for embeddings of the given dimension.
func NewSearcher(dimension int) *Searcher {
	return &Searcher{
		meta:    make(map[string]recordMeta),
		vectors: NewVectorIndex(dimension),
		text:    NewTrigramIndex(),
	}
}

// Index adds or replaces a record's index entries. Records without an
// embedding are text-searchable only.
func (s *Searcher) Index(rec *memory.Record) error {
	if len(rec.Embedding) > 0 {
		if err := s.vectors.Add(rec.ID, rec.Embedding); err != nil {
			return err
		}
	} else {
		s.vectors.Remove(rec.ID)
	}
	s.text.Add(rec.ID, rec.Content)

	s.mu.Lock()
	s.meta[rec.ID] = recordMeta{typ: rec.Type, status: rec.Status}
	s.mu.Unlock()
	return nil
}

// SetStatus updates the status attribute consulted by filtered searches.
// Unknown ids are ignored.
func (s *Searcher) SetStatus(id string, status memory.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meta[id]
	if !ok {
		return
	}
	m.status = status
	s.meta[id] = m
}

// Remove drops a record from every index.
func (s *Searcher) Remove(id string) {
	s.vectors.Remove(id)
	s.text.Remove(id)

	s.mu.Lock()
	delete(s.meta, id)
	s.mu.Unlock()
}

// Len returns the number of indexed records.
func (s *Searcher) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}

// allowed snapshots the ids admitted by the filter, or nil when the filter
// admits everything. The snapshot is taken before the sub-index search so
// the two locks are never held together.
func (s *Searcher) allowed(filter memory.SearchFilter) map[string]struct{} {
	if filter.Type == "" && filter.Status == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{})
	for id, m := range s.meta {
		if filter.Type != "" && m.typ != filter.Type {
			continue
		}
		if filter.Status != "" && m.status != filter.Status {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids
}

func allowFunc(ids map[string]struct{}) func(string) bool {
	if ids == nil {
		return nil
	}
	return func(id string) bool {
		_, ok := ids[id]
		return ok
	}
}

// Search returns up to k hits for the query embedding, ascending by cosine
// distance.
func (s *Searcher) Search(ctx context.Context, embedding []float32, k int, filter memory.SearchFilter) ([]memory.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = defaultLimit
	}

	ids, sims, err := s.vectors.Search(embedding, k, allowFunc(s.allowed(filter)))
	if err != nil {
		return nil, err
	}

	hits := make([]memory.SearchHit, len(ids))
	for i, id := range ids {
		hits[i] = memory.SearchHit{MemoryID: id, Distance: 1 - sims[i]}
	}
	return hits, nil
}

// SearchText returns up to limit fuzzy matches for the query, ascending by
// one minus trigram similarity.
func (s *Searcher) SearchText(ctx context.Context, query string, limit int, filter memory.SearchFilter) ([]memory.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	ids, sims := s.text.Search(query, limit, allowFunc(s.allowed(filter)))

	hits := make([]memory.SearchHit, len(ids))
	for i, id := range ids {
		hits[i] = memory.SearchHit{MemoryID: id, Distance: 1 - sims[i]}
	}
	return hits, nil
}

// Reindex rebuilds the index from the store, paging through every record.
// Called at startup when the store is durable but the index is not.
func (s *Searcher) Reindex(ctx context.Context, store memory.Store) (int, error) {
	const pageSize = 256

	total := 0
	for offset := 0; ; offset += pageSize {
		records, err := store.ListRecords(ctx, memory.RecordFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return total, err
		}
		if len(records) == 0 {
			return total, nil
		}
		for _, rec := range records {
			if err := s.Index(rec); err != nil {
				return total, err
			}
			total++
		}
		if len(records) < pageSize {
			return total, nil
		}
	}
}
