package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ErrDimensionMismatch is returned when an embedding's length does not match
// the index dimension.
var ErrDimensionMismatch = errors.New("index: dimension mismatch")

// VectorIndex answers nearest-neighbor queries with brute-force cosine
// similarity. Fine up to tens of thousands of vectors; beyond that an ANN
// structure can replace it behind the same methods.
type VectorIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float32
}

// NewVectorIndex creates an index for embeddings of the given dimension.
func NewVectorIndex(dimension int) *VectorIndex {
	return &VectorIndex{
		dimension: dimension,
		vectors:   make(map[string][]float32),
	}
}

// Add stores or replaces the vector for an id.
func (v *VectorIndex) Add(id string, vector []float32) error {
	if len(vector) != v.dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, v.dimension, len(vector))
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vectors[id] = vector
	return nil
}

// Remove drops an id from the index.
func (v *VectorIndex) Remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.vectors, id)
}

// Len returns the number of indexed vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}

// Search returns up to k ids by descending cosine similarity. A nil allow
// predicate admits every id.
func (v *VectorIndex) Search(query []float32, k int, allow func(string) bool) ([]string, []float64, error) {
	if len(query) != v.dimension {
		return nil, nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, v.dimension, len(query))
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	type scored struct {
		id    string
		score float64
	}

	var results []scored
	for id, vec := range v.vectors {
		if allow != nil && !allow(id) {
			continue
		}
		results = append(results, scored{id: id, score: cosineSimilarity(query, vec)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].id < results[j].id
		}
		return results[i].score > results[j].score
	})

	if k < 0 {
		k = 0
	}
	if k > len(results) {
		k = len(results)
	}
	results = results[:k]

	ids := make([]string, len(results))
	scores := make([]float64, len(results))
	for i, r := range results {
		ids[i] = r.id
		scores[i] = r.score
	}
	return ids, scores, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
