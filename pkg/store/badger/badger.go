// Package badger provides a Badger-backed implementation of the memory.Store
// interface. Records, relationships, and change trails live under distinct
// key prefixes; every mutation and its change entry commit in one
// transaction.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/engramhq/engram/pkg/memory"
)

// Config holds configuration for BadgerStore.
type Config struct {
	Path              string
	SyncWrites        bool
	ValueLogFileSize  int64
	NumVersionsToKeep int
}

// BadgerStore implements the memory.Store interface using Badger.
type BadgerStore struct {
	db     *badger.DB
	config *Config
}

// NewBadgerStore opens the database at the configured path.
func NewBadgerStore(config *Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions(config.Path)
	opts.SyncWrites = config.SyncWrites
	if config.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = config.ValueLogFileSize
	}
	if config.NumVersionsToKeep > 0 {
		opts.NumVersionsToKeep = config.NumVersionsToKeep
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", config.Path, err)
	}

	return &BadgerStore{db: db, config: config}, nil
}

// Key generation functions. Keys are never parsed back; the serialized values
// carry the authoritative fields.
func recordKey(id string) []byte {
	return []byte(fmt.Sprintf("record:%s", id))
}

func relationshipKey(fromID, relType, toID string) []byte {
	return []byte(fmt.Sprintf("rel:%s:%s:%s", fromID, relType, toID))
}

// changeKey zero-pads the sequence so byte order matches trail order.
func changeKey(memoryID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("change:%s:%020d", memoryID, seq))
}

func changeSeqKey(memoryID string) []byte {
	return []byte(fmt.Sprintf("changeseq:%s", memoryID))
}

func changePrefix(memoryID string) []byte {
	return []byte(fmt.Sprintf("change:%s:", memoryID))
}

var (
	recordPrefix       = []byte("record:")
	relationshipPrefix = []byte("rel:")
)

// Serialization helpers
func serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

func deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}

// mapCommitErr translates Badger's commit-time conflict into the store
// contract so callers can retry the way they do against any backend.
func mapCommitErr(err error, memoryID string) error {
	if errors.Is(err, badger.ErrConflict) {
		return &memory.ConflictError{MemoryID: memoryID}
	}
	return err
}

func getRecordInTxn(txn *badger.Txn, id string) (*memory.Record, error) {
	item, err := txn.Get(recordKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, &memory.NotFoundError{EntityType: "memory", ID: id}
		}
		return nil, err
	}

	var rec memory.Record
	if err := item.Value(func(val []byte) error {
		return deserialize(val, &rec)
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}

// nextChangeSeq advances the per-memory trail counter inside the caller's
// transaction. Concurrent writers to the same trail conflict at commit.
func nextChangeSeq(txn *badger.Txn, memoryID string) (uint64, error) {
	var seq uint64
	item, err := txn.Get(changeSeqKey(memoryID))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			return deserialize(val, &seq)
		}); err != nil {
			return 0, err
		}
	}

	seq++
	data, err := serialize(seq)
	if err != nil {
		return 0, err
	}
	if err := txn.Set(changeSeqKey(memoryID), data); err != nil {
		return 0, err
	}
	return seq, nil
}

func appendChange(txn *badger.Txn, change *memory.ChangeRecord) error {
	seq, err := nextChangeSeq(txn, change.MemoryID)
	if err != nil {
		return err
	}

	stored := *change
	stored.Sequence = seq
	data, err := serialize(&stored)
	if err != nil {
		return err
	}
	return txn.Set(changeKey(change.MemoryID, seq), data)
}

// CreateRecord stores a new record and its create change in one transaction.
func (b *BadgerStore) CreateRecord(ctx context.Context, rec *memory.Record, change *memory.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if change == nil {
		return &memory.ValidationError{Field: "change", Reason: "create requires a change entry"}
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(recordKey(rec.ID))
		if err == nil {
			return &memory.ConflictError{MemoryID: rec.ID}
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		stored := *rec
		stored.Version = 1
		data, err := serialize(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(recordKey(rec.ID), data); err != nil {
			return err
		}
		return appendChange(txn, change)
	})
	if err != nil {
		return mapCommitErr(err, rec.ID)
	}

	rec.Version = 1
	return nil
}

// GetRecord retrieves a record by ID.
func (b *BadgerStore) GetRecord(ctx context.Context, id string) (*memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *memory.Record
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecordInTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateRecord applies a compare-and-set write guarded by the record version.
// The caller's version must match the stored one; the committed record
// carries version+1, reflected on rec after success.
func (b *BadgerStore) UpdateRecord(ctx context.Context, rec *memory.Record, change *memory.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if change == nil {
		return &memory.ValidationError{Field: "change", Reason: "update requires a change entry"}
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		current, err := getRecordInTxn(txn, rec.ID)
		if err != nil {
			return err
		}
		if current.Version != rec.Version {
			return &memory.ConflictError{MemoryID: rec.ID}
		}

		stored := *rec
		stored.Version = rec.Version + 1
		data, err := serialize(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(recordKey(rec.ID), data); err != nil {
			return err
		}
		return appendChange(txn, change)
	})
	if err != nil {
		return mapCommitErr(err, rec.ID)
	}

	rec.Version++
	return nil
}

// ListRecords scans the record prefix and filters in memory. The store keeps
// no secondary indexes, so listing cost grows with the corpus.
func (b *BadgerStore) ListRecords(ctx context.Context, filter memory.RecordFilter) ([]*memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []*memory.Record
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec memory.Record
			if err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &rec)
			}); err != nil {
				return err
			}
			if filter.Matches(&rec) {
				records = append(records, &rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return nil, nil
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records, nil
}

// CountRecords returns the number of records matching the filter.
func (b *BadgerStore) CountRecords(ctx context.Context, filter memory.RecordFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec memory.Record
			if err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &rec)
			}); err != nil {
				return err
			}
			if filter.Matches(&rec) {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PutRelationship upserts the (from, to, type) edge. Both endpoints are
// checked inside the transaction; an existing edge keeps its identity and
// creation time while its properties are replaced.
func (b *BadgerStore) PutRelationship(ctx context.Context, rel *memory.Relationship, change *memory.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var keepID string
	var keepCreated time.Time
	existed := false

	err := b.db.Update(func(txn *badger.Txn) error {
		for _, id := range []string{rel.FromID, rel.ToID} {
			if _, err := txn.Get(recordKey(id)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return &memory.NotFoundError{EntityType: "memory", ID: id}
				}
				return err
			}
		}

		key := relationshipKey(rel.FromID, rel.RelType, rel.ToID)
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			var existing memory.Relationship
			if err := item.Value(func(val []byte) error {
				return deserialize(val, &existing)
			}); err != nil {
				return err
			}
			existed = true
			keepID = existing.ID
			keepCreated = existing.CreatedAt
		}

		stored := *rel
		if existed {
			stored.ID = keepID
			stored.CreatedAt = keepCreated
		}
		data, err := serialize(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		if change != nil {
			return appendChange(txn, change)
		}
		return nil
	})
	if err != nil {
		return mapCommitErr(err, rel.FromID)
	}

	if existed {
		rel.ID = keepID
		rel.CreatedAt = keepCreated
	}
	return nil
}

// ListRelationships scans the edge prefix and filters in memory.
func (b *BadgerStore) ListRelationships(ctx context.Context, query memory.RelationshipQuery) ([]*memory.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rels []*memory.Relationship
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = relationshipPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rel memory.Relationship
			if err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &rel)
			}); err != nil {
				return err
			}
			if query.Matches(&rel) {
				rels = append(rels, &rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Key order follows the edge triple, not age.
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].ID < rels[j].ID
		}
		return rels[i].CreatedAt.Before(rels[j].CreatedAt)
	})
	return rels, nil
}

// Changes returns a memory's trail in sequence order. Zero-padded keys make
// the prefix scan come back already sorted.
func (b *BadgerStore) Changes(ctx context.Context, memoryID string) ([]*memory.ChangeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var trail []*memory.ChangeRecord
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = changePrefix(memoryID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var ch memory.ChangeRecord
			if err := it.Item().Value(func(val []byte) error {
				return deserialize(val, &ch)
			}); err != nil {
				return err
			}
			trail = append(trail, &ch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trail, nil
}

// HealthCheck reports whether the database is open.
func (b *BadgerStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

// Close closes the Badger database after a value log GC pass.
func (b *BadgerStore) Close() error {
	if err := b.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		// GC errors do not fail close.
	}
	return b.db.Close()
}
