package index

import (
	"errors"
	"math"
	"testing"
)

func TestVectorIndex_AddAndSearch(t *testing.T) {
	idx := NewVectorIndex(3)

	if err := idx.Add("a", []float32{1, 0, 0}); err != nil {
		t.Fatalf("failed to add vector: %v", err)
	}
	if err := idx.Add("b", []float32{0, 1, 0}); err != nil {
		t.Fatalf("failed to add vector: %v", err)
	}
	if err := idx.Add("c", []float32{0.9, 0.1, 0}); err != nil {
		t.Fatalf("failed to add vector: %v", err)
	}

	ids, scores, err := idx.Search([]float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ids))
	}
	if ids[0] != "a" {
		t.Errorf("expected best match a, got %s", ids[0])
	}
	if ids[1] != "c" {
		t.Errorf("expected second match c, got %s", ids[1])
	}
	if math.Abs(scores[0]-1.0) > 0.001 {
		t.Errorf("expected score ~1.0 for identical vector, got %f", scores[0])
	}
	if scores[1] >= scores[0] {
		t.Errorf("expected descending scores, got %f then %f", scores[0], scores[1])
	}
}

func TestVectorIndex_Update(t *testing.T) {
	idx := NewVectorIndex(2)

	if err := idx.Add("a", []float32{1, 0}); err != nil {
		t.Fatalf("failed to add vector: %v", err)
	}
	if err := idx.Add("a", []float32{0, 1}); err != nil {
		t.Fatalf("failed to update vector: %v", err)
	}

	if idx.Len() != 1 {
		t.Fatalf("expected 1 vector after update, got %d", idx.Len())
	}

	ids, scores, err := idx.Search([]float32{0, 1}, 1, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected a, got %v", ids)
	}
	if math.Abs(scores[0]-1.0) > 0.001 {
		t.Errorf("expected score ~1.0 after update, got %f", scores[0])
	}
}

func TestVectorIndex_Remove(t *testing.T) {
	idx := NewVectorIndex(2)

	if err := idx.Add("a", []float32{1, 0}); err != nil {
		t.Fatalf("failed to add vector: %v", err)
	}
	idx.Remove("a")
	idx.Remove("missing")

	if idx.Len() != 0 {
		t.Fatalf("expected empty index, got %d vectors", idx.Len())
	}

	ids, _, err := idx.Search([]float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no results after remove, got %v", ids)
	}
}

func TestVectorIndex_AllowPredicate(t *testing.T) {
	idx := NewVectorIndex(2)

	for id, vec := range map[string][]float32{
		"a": {1, 0},
		"b": {0.9, 0.1},
		"c": {0, 1},
	} {
		if err := idx.Add(id, vec); err != nil {
			t.Fatalf("failed to add vector: %v", err)
		}
	}

	ids, _, err := idx.Search([]float32{1, 0}, 10, func(id string) bool {
		return id == "b" || id == "c"
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ids))
	}
	if ids[0] != "b" {
		t.Errorf("expected b first, got %s", ids[0])
	}
	for _, id := range ids {
		if id == "a" {
			t.Error("excluded id a appeared in results")
		}
	}
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	idx := NewVectorIndex(3)

	if err := idx.Add("a", []float32{1, 0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on add, got %v", err)
	}

	if _, _, err := idx.Search([]float32{1, 0, 0, 0}, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on search, got %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
