package memory

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const lifecycleTracerName = "engram.lifecycle"

const (
	spanConsolidate = "memory.consolidate"
	spanReinforce   = "memory.reinforce"
	spanRecall      = "memory.recall"
	spanSweep       = "memory.sweep"
)

func lifecycleTracer() trace.Tracer {
	return otel.Tracer(lifecycleTracerName)
}
