// Package memory implements the long-term memory lifecycle engine: typed
// memory records scored by time-decayed importance, a working-memory staging
// buffer, consolidation of buffered items into durable records, a typed
// relationship graph, a periodic pruning sweep that archives and invalidates
// low-relevance records, and an append-only change log auditing every
// mutation.
//
// The engine owns no storage mechanics itself. All durable state lives behind
// the Store interface; per-record serialization is achieved with a version
// compare-and-set so reinforcement, consolidation, linking, and the sweep can
// run concurrently across different records.
package memory

import "errors"

// Sentinel errors returned by the engine and its collaborators.
var (
	// ErrNotStarted is returned when an operation requires a started engine.
	ErrNotStarted = errors.New("memory: engine not started")

	// ErrAlreadyStarted is returned when starting a started engine.
	ErrAlreadyStarted = errors.New("memory: engine already started")

	// ErrSweepRunning is returned when a sweep is requested while another
	// sweep is still in progress.
	ErrSweepRunning = errors.New("memory: sweep already running")

	// ErrBufferFull is returned by Put when the working buffer is at capacity.
	ErrBufferFull = errors.New("memory: working buffer full")

	// ErrItemTaken is returned by Take when the item was already taken,
	// expired, or never existed.
	ErrItemTaken = errors.New("memory: working item unavailable")

	// ErrNoSearcher is returned by recall when no search index is attached.
	ErrNoSearcher = errors.New("memory: no searcher configured")
)
