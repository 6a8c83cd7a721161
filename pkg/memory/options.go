package memory

import "time"

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger engineLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for the engine.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithEventSink sets the sink that receives lifecycle events.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.events = sink
		}
	}
}

// WithSearcher sets the similarity searcher used by Recall and Search.
func WithSearcher(searcher Searcher) Option {
	return func(e *Engine) {
		if searcher != nil {
			e.searcher = searcher
		}
	}
}

// WithIndexer sets the indexer kept in step with record mutations.
func WithIndexer(indexer Indexer) Option {
	return func(e *Engine) {
		if indexer != nil {
			e.indexer = indexer
		}
	}
}

// WithIDGenerator sets the id generator for records, relationships, and
// change entries.
func WithIDGenerator(idgen func() string) Option {
	return func(e *Engine) {
		if idgen != nil {
			e.idgen = idgen
		}
	}
}

// WithClock sets the time source. Tests inject a fixed clock to make decay
// deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
