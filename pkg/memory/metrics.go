package memory

import "time"

// MetricsRecorder records memory lifecycle metrics.
type MetricsRecorder interface {
	RecordConsolidation(memoryType string)
	RecordReinforcement(memoryType string)
	RecordConflictRetry(op string)
	RecordSweep(archived, invalidated, failed int, duration time.Duration)
	SetBufferDepth(depth int)
}

type nopMetricsRecorder struct{}

func (n *nopMetricsRecorder) RecordConsolidation(memoryType string)                          {}
func (n *nopMetricsRecorder) RecordReinforcement(memoryType string)                          {}
func (n *nopMetricsRecorder) RecordConflictRetry(op string)                                  {}
func (n *nopMetricsRecorder) RecordSweep(archived, invalidated, failed int, d time.Duration) {}
func (n *nopMetricsRecorder) SetBufferDepth(depth int)                                       {}
