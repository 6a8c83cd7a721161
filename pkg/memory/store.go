package memory

import "context"

// RecordFilter narrows record listings. Zero values mean no constraint.
type RecordFilter struct {
	Type   Type
	Status Status

	// Limit caps the number of returned records; 0 means unlimited.
	Limit int

	// Offset skips records for pagination.
	Offset int
}

// Matches reports whether rec satisfies the filter.
func (f RecordFilter) Matches(rec *Record) bool {
	if f.Type != "" && rec.Type != f.Type {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}

// RelationshipQuery selects edges touching one memory.
type RelationshipQuery struct {
	MemoryID  string
	Direction Direction

	// RelType restricts to one relationship type; empty means all.
	RelType string
}

// Matches reports whether rel satisfies the query. An empty direction means
// both.
func (q RelationshipQuery) Matches(rel *Relationship) bool {
	if q.RelType != "" && rel.RelType != q.RelType {
		return false
	}
	switch q.Direction {
	case DirectionOutgoing:
		return rel.FromID == q.MemoryID
	case DirectionIncoming:
		return rel.ToID == q.MemoryID
	case DirectionBoth, "":
		return rel.FromID == q.MemoryID || rel.ToID == q.MemoryID
	default:
		return false
	}
}

// Store is the durable persistence contract for records, relationships, and
// the change log. Implementations must guarantee:
//
//   - CreateRecord writes the record and its create change atomically, or
//     nothing. A duplicate id fails with *ConflictError.
//   - UpdateRecord is a compare-and-set: it commits only when the stored
//     version equals rec.Version, then persists rec with the version
//     incremented (reflected on rec before return) together with the change
//     entry. A version mismatch fails with *ConflictError and writes
//     nothing.
//   - PutRelationship verifies both endpoints exist inside the same
//     transaction that writes the edge, failing with *NotFoundError
//     otherwise. The (from, to, type) triple is unique: a second put
//     overwrites Properties, keeps the original ID and CreatedAt, and
//     updates rel in place to the stored edge.
//   - Change sequences are assigned per memory, contiguous from 1, inside
//     the writing transaction. A change entry that cannot be written must
//     fail its whole transaction: the audit trail is not best-effort.
//   - Returned records, relationships, and changes are private copies.
type Store interface {
	// CreateRecord persists a new record together with its create change.
	CreateRecord(ctx context.Context, rec *Record, change *ChangeRecord) error

	// GetRecord returns the record by id, or *NotFoundError.
	GetRecord(ctx context.Context, id string) (*Record, error)

	// UpdateRecord commits a mutation guarded by rec.Version, together with
	// its change entry.
	UpdateRecord(ctx context.Context, rec *Record, change *ChangeRecord) error

	// ListRecords returns records matching the filter, newest first.
	ListRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// CountRecords returns the number of records matching the filter.
	CountRecords(ctx context.Context, filter RecordFilter) (int, error)

	// PutRelationship upserts an edge after resolving both endpoints. The
	// optional change entry is appended to the from-memory's trail in the
	// same transaction.
	PutRelationship(ctx context.Context, rel *Relationship, change *ChangeRecord) error

	// ListRelationships returns matching edges ordered by creation time,
	// oldest first.
	ListRelationships(ctx context.Context, query RelationshipQuery) ([]*Relationship, error)

	// Changes returns a memory's audit trail ordered by sequence.
	Changes(ctx context.Context, memoryID string) ([]*ChangeRecord, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
