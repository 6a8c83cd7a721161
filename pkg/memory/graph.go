package memory

import (
	"context"
	"iter"
	"time"
)

// Graph manages the typed, directed relationship edges between memory
// records. Endpoint resolution and edge writes happen inside one store
// transaction, so a concurrent archival can never leave a dangling edge.
type Graph struct {
	store Store
	idgen func() string
	now   func() time.Time
}

// NewGraph creates a relationship manager on the given store.
func NewGraph(store Store, idgen func() string, now func() time.Time) *Graph {
	return &Graph{
		store: store,
		idgen: idgen,
		now:   now,
	}
}

// Link upserts a directed edge. Both endpoints must exist at call time;
// otherwise *NotFoundError. Re-linking the same (from, to, type) triple
// overwrites the edge properties and keeps the original identity. The edge
// write and its change entry commit together.
func (g *Graph) Link(ctx context.Context, fromID, toID, relType string, properties Properties) (*Relationship, error) {
	if fromID == "" {
		return nil, &ValidationError{Field: "from_id", Reason: "from_id is required"}
	}
	if toID == "" {
		return nil, &ValidationError{Field: "to_id", Reason: "to_id is required"}
	}
	if relType == "" {
		return nil, &ValidationError{Field: "relationship_type", Reason: "relationship_type is required"}
	}

	rel := &Relationship{
		ID:         g.idgen(),
		FromID:     fromID,
		ToID:       toID,
		RelType:    relType,
		Properties: cloneProperties(properties),
		CreatedAt:  g.now(),
	}
	change := newChange(g.idgen(), fromID, g.now(), ChangeLink, nil, linkSnapshot(rel))

	if err := g.store.PutRelationship(ctx, rel, change); err != nil {
		return nil, err
	}
	return rel, nil
}

// Query returns the edges touching memoryID in creation order as a lazy,
// restartable sequence: each range re-reads the store. relType narrows to
// one edge type when non-empty.
func (g *Graph) Query(ctx context.Context, memoryID string, direction Direction, relType string) iter.Seq2[*Relationship, error] {
	return func(yield func(*Relationship, error) bool) {
		if memoryID == "" {
			yield(nil, &ValidationError{Field: "memory_id", Reason: "memory_id is required"})
			return
		}
		if direction != "" && !direction.IsValid() {
			yield(nil, &ValidationError{Field: "direction", Reason: "must be out, in, or both"})
			return
		}

		edges, err := g.store.ListRelationships(ctx, RelationshipQuery{
			MemoryID:  memoryID,
			Direction: direction,
			RelType:   relType,
		})
		if err != nil {
			yield(nil, err)
			return
		}
		for _, edge := range edges {
			if !yield(edge, nil) {
				return
			}
		}
	}
}
