package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initLifecycleMetrics initializes memory lifecycle metrics.
func (m *Manager) initLifecycleMetrics(cfg Config) {
	m.consolidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_consolidations_total",
			Help: "Total number of working items consolidated into long-term memory",
		},
		[]string{"memory_type"},
	)

	m.reinforcements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_reinforcements_total",
			Help: "Total number of memory reinforcements by memory type",
		},
		[]string{"memory_type"},
	)

	m.conflictRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_conflict_retries_total",
			Help: "Total number of optimistic-concurrency retries by operation",
		},
		[]string{"op"},
	)

	m.sweepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_sweep_transitions_total",
			Help: "Total number of sweep transitions by outcome",
		},
		[]string{"outcome"},
	)

	m.sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memory_sweep_duration_seconds",
			Help:    "Pruning sweep duration in seconds",
			Buckets: cfg.SweepDurationBuckets,
		},
	)

	m.bufferDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "working_buffer_depth",
			Help: "Current number of items in the working memory buffer",
		},
	)

	m.registry.MustRegister(m.consolidations)
	m.registry.MustRegister(m.reinforcements)
	m.registry.MustRegister(m.conflictRetries)
	m.registry.MustRegister(m.sweepTransitions)
	m.registry.MustRegister(m.sweepDuration)
	m.registry.MustRegister(m.bufferDepth)
}

// RecordConsolidation records a working item promoted to long-term memory.
func (m *Manager) RecordConsolidation(memoryType string) {
	if !m.enabled {
		return
	}
	m.consolidations.WithLabelValues(memoryType).Inc()
}

// RecordReinforcement records a reinforcement on memory access.
func (m *Manager) RecordReinforcement(memoryType string) {
	if !m.enabled {
		return
	}
	m.reinforcements.WithLabelValues(memoryType).Inc()
}

// RecordConflictRetry records a compare-and-set retry for an operation.
func (m *Manager) RecordConflictRetry(op string) {
	if !m.enabled {
		return
	}
	m.conflictRetries.WithLabelValues(op).Inc()
}

// RecordSweep records the outcome counts and duration of a pruning sweep.
func (m *Manager) RecordSweep(archived, invalidated, failed int, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.sweepTransitions.WithLabelValues("archived").Add(float64(archived))
	m.sweepTransitions.WithLabelValues("invalidated").Add(float64(invalidated))
	m.sweepTransitions.WithLabelValues("failed").Add(float64(failed))
	m.sweepDuration.Observe(duration.Seconds())
}

// SetBufferDepth sets the working buffer depth gauge.
func (m *Manager) SetBufferDepth(depth int) {
	if !m.enabled {
		return
	}
	m.bufferDepth.Set(float64(depth))
}
