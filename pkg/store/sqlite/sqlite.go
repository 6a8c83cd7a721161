// Package sqlite provides a SQLite-backed implementation of the memory.Store
// interface using the pure-Go modernc driver. Records, relationships, and
// change trails live in separate tables; every mutation and its change entry
// commit in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/engramhq/engram/pkg/memory"
)

// timeLayout pads fractional seconds so the TEXT columns sort
// chronologically. RFC3339Nano trims trailing zeros and breaks byte order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Config holds configuration for SQLiteStore.
type Config struct {
	// Path is the database file. ":memory:" opens an in-memory database.
	Path string

	// BusyTimeout bounds how long a locked database is retried.
	BusyTimeout time.Duration
}

// SQLiteStore implements the memory.Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a database at the configured path and runs
// migrations.
func NewSQLiteStore(config *Config) (*SQLiteStore, error) {
	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	busy := config.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("%s?_txlock=immediate&_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(%d)",
		config.Path, busy.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite allows one writer at a time. A single pooled connection queues
	// writers in-process and keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		memory_id     TEXT PRIMARY KEY,
		memory_type   TEXT NOT NULL,
		status        TEXT NOT NULL,
		content       TEXT NOT NULL,
		embedding     TEXT,
		importance    REAL NOT NULL,
		access_count  INTEGER NOT NULL DEFAULT 0,
		last_accessed TEXT,
		decay_rate    REAL NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		archived_at   TEXT,
		version       INTEGER NOT NULL DEFAULT 1,
		payload       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_status ON memories(status);
	CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(memory_type, status);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

	CREATE TABLE IF NOT EXISTS relationships (
		relationship_id   TEXT NOT NULL,
		from_id           TEXT NOT NULL REFERENCES memories(memory_id),
		to_id             TEXT NOT NULL REFERENCES memories(memory_id),
		relationship_type TEXT NOT NULL,
		properties        TEXT,
		created_at        TEXT NOT NULL,
		PRIMARY KEY (from_id, to_id, relationship_type)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships(to_id);

	CREATE TABLE IF NOT EXISTS changes (
		change_id   TEXT NOT NULL,
		memory_id   TEXT NOT NULL,
		sequence    INTEGER NOT NULL,
		changed_at  TEXT NOT NULL,
		change_type TEXT NOT NULL,
		old_value   TEXT,
		new_value   TEXT,
		PRIMARY KEY (memory_id, sequence)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const recordColumns = `memory_id, memory_type, status, content, embedding, importance, access_count, last_accessed, decay_rate, created_at, updated_at, archived_at, version, payload`

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// fmtTimePtr returns a bind argument for an optional timestamp.
func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, _ := time.Parse(timeLayout, ns.String)
	return &t
}

// encodeJSON returns a bind argument holding v as JSON, or nil when there is
// nothing to store.
func encodeJSON(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return string(data), nil
}

func encodePayload(rec *memory.Record) (any, error) {
	payload := rec.Payload()
	return encodeJSON(payload, payload == nil)
}

func decodePayload(rec *memory.Record, data string) error {
	var err error
	switch rec.Type {
	case memory.TypeEpisodic:
		rec.Episodic = &memory.EpisodicMemory{}
		err = json.Unmarshal([]byte(data), rec.Episodic)
	case memory.TypeSemantic:
		rec.Semantic = &memory.SemanticMemory{}
		err = json.Unmarshal([]byte(data), rec.Semantic)
	case memory.TypeProcedural:
		rec.Procedural = &memory.ProceduralMemory{}
		err = json.Unmarshal([]byte(data), rec.Procedural)
	case memory.TypeStrategic:
		rec.Strategic = &memory.StrategicMemory{}
		err = json.Unmarshal([]byte(data), rec.Strategic)
	}
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", rec.Type, err)
	}
	return nil
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*memory.Record, error) {
	var rec memory.Record
	var typ, status, createdAt, updatedAt string
	var embedding, lastAccessed, archivedAt, payload sql.NullString

	err := row.Scan(
		&rec.ID, &typ, &status, &rec.Content, &embedding, &rec.Importance,
		&rec.AccessCount, &lastAccessed, &rec.DecayRate, &createdAt, &updatedAt,
		&archivedAt, &rec.Version, &payload,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = memory.Type(typ)
	rec.Status = memory.Status(status)
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	rec.LastAccessed = parseTimePtr(lastAccessed)
	rec.ArchivedAt = parseTimePtr(archivedAt)
	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
	}
	if payload.Valid {
		if err := decodePayload(&rec, payload.String); err != nil {
			return nil, err
		}
	}

	return &rec, nil
}

// appendChange assigns the next trail sequence and writes the entry inside
// the caller's transaction.
func appendChange(ctx context.Context, tx *sql.Tx, change *memory.ChangeRecord) error {
	var seq uint64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM changes WHERE memory_id = ?`,
		change.MemoryID).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next change sequence: %w", err)
	}

	oldValue, err := encodeJSON(change.OldValue, change.OldValue == nil)
	if err != nil {
		return err
	}
	newValue, err := encodeJSON(change.NewValue, change.NewValue == nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO changes (change_id, memory_id, sequence, changed_at, change_type, old_value, new_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		change.ID, change.MemoryID, seq, fmtTime(change.ChangedAt), string(change.Change), oldValue, newValue)
	if err != nil {
		return fmt.Errorf("insert change: %w", err)
	}
	return nil
}

// CreateRecord stores a new record and its create change in one transaction.
func (s *SQLiteStore) CreateRecord(ctx context.Context, rec *memory.Record, change *memory.ChangeRecord) error {
	if change == nil {
		return &memory.ValidationError{Field: "change", Reason: "create requires a change entry"}
	}

	embedding, err := encodeJSON(rec.Embedding, len(rec.Embedding) == 0)
	if err != nil {
		return err
	}
	payload, err := encodePayload(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories (`+recordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Type), string(rec.Status), rec.Content, embedding,
		rec.Importance, rec.AccessCount, fmtTimePtr(rec.LastAccessed), rec.DecayRate,
		fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.ArchivedAt),
		1, payload)
	if err != nil {
		if isConstraintErr(err) {
			return &memory.ConflictError{MemoryID: rec.ID}
		}
		return fmt.Errorf("insert memory: %w", err)
	}

	if err := appendChange(ctx, tx, change); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	rec.Version = 1
	return nil
}

// GetRecord retrieves a record by ID.
func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*memory.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM memories WHERE memory_id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &memory.NotFoundError{EntityType: "memory", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateRecord applies a compare-and-set write guarded by the record version.
// The version check rides on the UPDATE itself, so stale writers see zero
// affected rows instead of racing a separate read.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, rec *memory.Record, change *memory.ChangeRecord) error {
	if change == nil {
		return &memory.ValidationError{Field: "change", Reason: "update requires a change entry"}
	}

	embedding, err := encodeJSON(rec.Embedding, len(rec.Embedding) == 0)
	if err != nil {
		return err
	}
	payload, err := encodePayload(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE memories
		 SET memory_type = ?, status = ?, content = ?, embedding = ?, importance = ?,
		     access_count = ?, last_accessed = ?, decay_rate = ?, updated_at = ?,
		     archived_at = ?, version = version + 1, payload = ?
		 WHERE memory_id = ? AND version = ?`,
		string(rec.Type), string(rec.Status), rec.Content, embedding, rec.Importance,
		rec.AccessCount, fmtTimePtr(rec.LastAccessed), rec.DecayRate, fmtTime(rec.UpdatedAt),
		fmtTimePtr(rec.ArchivedAt), payload, rec.ID, rec.Version)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM memories WHERE memory_id = ?`, rec.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return &memory.NotFoundError{EntityType: "memory", ID: rec.ID}
		}
		return &memory.ConflictError{MemoryID: rec.ID}
	}

	if err := appendChange(ctx, tx, change); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	rec.Version++
	return nil
}

func filterClauses(filter memory.RecordFilter) ([]string, []any) {
	var where []string
	var args []any
	if filter.Type != "" {
		where = append(where, "memory_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	return where, args
}

// ListRecords returns records newest first with optional filtering and
// pagination.
func (s *SQLiteStore) ListRecords(ctx context.Context, filter memory.RecordFilter) ([]*memory.Record, error) {
	where, args := filterClauses(filter)

	query := `SELECT ` + recordColumns + ` FROM memories`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, memory_id ASC`
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	case filter.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*memory.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountRecords returns the number of records matching the filter.
func (s *SQLiteStore) CountRecords(ctx context.Context, filter memory.RecordFilter) (int, error) {
	where, args := filterClauses(filter)

	query := `SELECT COUNT(*) FROM memories`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// PutRelationship upserts the (from, to, type) edge. Both endpoints are
// checked inside the transaction; an existing edge keeps its identity and
// creation time while its properties are replaced.
func (s *SQLiteStore) PutRelationship(ctx context.Context, rel *memory.Relationship, change *memory.ChangeRecord) error {
	props, err := encodeJSON(rel.Properties, rel.Properties == nil)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range []string{rel.FromID, rel.ToID} {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM memories WHERE memory_id = ?`, id).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return &memory.NotFoundError{EntityType: "memory", ID: id}
		}
	}

	var keepID, keepCreated string
	err = tx.QueryRowContext(ctx,
		`SELECT relationship_id, created_at FROM relationships
		 WHERE from_id = ? AND to_id = ? AND relationship_type = ?`,
		rel.FromID, rel.ToID, rel.RelType).Scan(&keepID, &keepCreated)
	existed := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if existed {
		_, err = tx.ExecContext(ctx,
			`UPDATE relationships SET properties = ?
			 WHERE from_id = ? AND to_id = ? AND relationship_type = ?`,
			props, rel.FromID, rel.ToID, rel.RelType)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO relationships (relationship_id, from_id, to_id, relationship_type, properties, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rel.ID, rel.FromID, rel.ToID, rel.RelType, props, fmtTime(rel.CreatedAt))
	}
	if err != nil {
		return fmt.Errorf("put relationship: %w", err)
	}

	if change != nil {
		if err := appendChange(ctx, tx, change); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if existed {
		rel.ID = keepID
		created, _ := time.Parse(timeLayout, keepCreated)
		rel.CreatedAt = created
	}
	return nil
}

// ListRelationships returns edges touching a memory, oldest first.
func (s *SQLiteStore) ListRelationships(ctx context.Context, query memory.RelationshipQuery) ([]*memory.Relationship, error) {
	var where []string
	var args []any

	switch query.Direction {
	case memory.DirectionOutgoing:
		where = append(where, "from_id = ?")
		args = append(args, query.MemoryID)
	case memory.DirectionIncoming:
		where = append(where, "to_id = ?")
		args = append(args, query.MemoryID)
	case memory.DirectionBoth, "":
		where = append(where, "(from_id = ? OR to_id = ?)")
		args = append(args, query.MemoryID, query.MemoryID)
	default:
		return nil, nil
	}
	if query.RelType != "" {
		where = append(where, "relationship_type = ?")
		args = append(args, query.RelType)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT relationship_id, from_id, to_id, relationship_type, properties, created_at
		 FROM relationships WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at ASC, relationship_id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []*memory.Relationship
	for rows.Next() {
		var rel memory.Relationship
		var props sql.NullString
		var createdAt string
		if err := rows.Scan(&rel.ID, &rel.FromID, &rel.ToID, &rel.RelType, &props, &createdAt); err != nil {
			return nil, err
		}
		rel.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		if props.Valid {
			if err := json.Unmarshal([]byte(props.String), &rel.Properties); err != nil {
				return nil, fmt.Errorf("decode relationship properties: %w", err)
			}
		}
		rels = append(rels, &rel)
	}
	return rels, rows.Err()
}

// Changes returns a memory's trail in sequence order.
func (s *SQLiteStore) Changes(ctx context.Context, memoryID string) ([]*memory.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT change_id, memory_id, sequence, changed_at, change_type, old_value, new_value
		 FROM changes WHERE memory_id = ? ORDER BY sequence ASC`, memoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trail []*memory.ChangeRecord
	for rows.Next() {
		var ch memory.ChangeRecord
		var changedAt, changeType string
		var oldValue, newValue sql.NullString
		if err := rows.Scan(&ch.ID, &ch.MemoryID, &ch.Sequence, &changedAt, &changeType, &oldValue, &newValue); err != nil {
			return nil, err
		}
		ch.ChangedAt, _ = time.Parse(timeLayout, changedAt)
		ch.Change = memory.ChangeType(changeType)
		if oldValue.Valid {
			if err := json.Unmarshal([]byte(oldValue.String), &ch.OldValue); err != nil {
				return nil, fmt.Errorf("decode change old value: %w", err)
			}
		}
		if newValue.Valid {
			if err := json.Unmarshal([]byte(newValue.String), &ch.NewValue); err != nil {
				return nil, fmt.Errorf("decode change new value: %w", err)
			}
		}
		trail = append(trail, &ch)
	}
	return trail, rows.Err()
}

// HealthCheck reports whether the database answers.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
