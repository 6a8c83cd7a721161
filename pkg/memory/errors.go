package memory

import "fmt"

// ValidationError indicates a bound or required-field violation detected
// before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates the referenced entity does not exist.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityType, e.ID)
}

// ConflictError indicates a lost update: the record version changed between
// read and write. Surfaced only after internal retries are exhausted.
type ConflictError struct {
	MemoryID string
	Attempts int
}

func (e *ConflictError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("conflicting update on memory %s after %d attempts", e.MemoryID, e.Attempts)
	}
	return fmt.Sprintf("conflicting update on memory %s", e.MemoryID)
}

// ConsolidationError indicates a malformed or duplicate promotion of a
// working item.
type ConsolidationError struct {
	ItemID string
	Reason string
}

func (e *ConsolidationError) Error() string {
	return fmt.Sprintf("consolidation of item %s failed: %s", e.ItemID, e.Reason)
}

// PruningError scopes a sweep failure to a single memory. The sweep logs it
// and continues with the remaining records.
type PruningError struct {
	MemoryID string
	Err      error
}

func (e *PruningError) Error() string {
	return fmt.Sprintf("pruning memory %s: %v", e.MemoryID, e.Err)
}

func (e *PruningError) Unwrap() error {
	return e.Err
}
