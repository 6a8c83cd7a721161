package memory

import "context"

// SearchFilter narrows a search to one type and/or status. Zero values mean
// no restriction.
type SearchFilter struct {
	Type   Type
	Status Status
}

// SearchHit is one index match. Distance is cosine distance for embedding
// searches and 1 - trigram similarity for text searches, so smaller is always
// closer and results order ascending.
type SearchHit struct {
	MemoryID string
	Distance float64
}

// Searcher answers similarity queries over indexed records.
type Searcher interface {
	// Search returns up to k hits for the query embedding, ascending by
	// distance.
	Search(ctx context.Context, embedding []float32, k int, filter SearchFilter) ([]SearchHit, error)

	// SearchText returns up to limit fuzzy text matches for the query,
	// ascending by distance.
	SearchText(ctx context.Context, query string, limit int, filter SearchFilter) ([]SearchHit, error)
}

// Indexer keeps a search index in step with record mutations. Index updates
// ride outside the storage transaction; the store stays the source of truth
// and stale hits are re-checked on read.
type Indexer interface {
	// Index adds or replaces a record's index entry.
	Index(rec *Record) error

	// SetStatus updates the status attribute used by filtered searches.
	SetStatus(id string, status Status)

	// Remove drops a record from the index.
	Remove(id string)
}

type nopIndexer struct{}

func (n *nopIndexer) Index(rec *Record) error            { return nil }
func (n *nopIndexer) SetStatus(id string, status Status) {}
func (n *nopIndexer) Remove(id string)                   {}
