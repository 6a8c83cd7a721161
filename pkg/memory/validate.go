package memory

import "fmt"

// validateEmbedding checks the vector length against the configured
// dimension. Empty embeddings are permitted: such records are simply not
// similarity-searchable.
func validateEmbedding(embedding []float32, dimension int) error {
	if len(embedding) == 0 || dimension <= 0 {
		return nil
	}
	if len(embedding) != dimension {
		return &ValidationError{
			Field:  "embedding",
			Reason: fmt.Sprintf("dimension mismatch: expected %d, got %d", dimension, len(embedding)),
		}
	}
	return nil
}

// validateDecision checks the caller-supplied promotion decision.
func validateDecision(d Decision) error {
	if d.Importance < 0 {
		return &ValidationError{Field: "importance", Reason: fmt.Sprintf("must be >= 0, got %g", d.Importance)}
	}
	if d.DecayRate < 0 {
		return &ValidationError{Field: "decay_rate", Reason: fmt.Sprintf("must be > 0 when set, got %g", d.DecayRate)}
	}
	return nil
}

// validatePayload enforces the per-type bounds at the consolidation
// boundary. The payload's concrete type must match the requested memory
// type; bounds are checked before anything is persisted.
func validatePayload(typ Type, payload SubtypePayload) error {
	if !typ.IsValid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown memory type %q", typ)}
	}
	if payload == nil {
		return &ValidationError{Field: "payload", Reason: "subtype payload is required"}
	}
	if payload.memoryType() != typ {
		return &ValidationError{
			Field:  "payload",
			Reason: fmt.Sprintf("payload is %s, record type is %s", payload.memoryType(), typ),
		}
	}

	switch p := payload.(type) {
	case *EpisodicMemory:
		if p.EmotionalValence < -1 || p.EmotionalValence > 1 {
			return &ValidationError{
				Field:  "emotional_valence",
				Reason: fmt.Sprintf("must be in [-1, 1], got %g", p.EmotionalValence),
			}
		}
	case *SemanticMemory:
		if p.Confidence < 0 || p.Confidence > 1 {
			return &ValidationError{
				Field:  "confidence",
				Reason: fmt.Sprintf("must be in [0, 1], got %g", p.Confidence),
			}
		}
	case *ProceduralMemory:
		if p.SuccessCount < 0 || p.TotalAttempts < 0 {
			return &ValidationError{Field: "success_count", Reason: "attempt counters must be >= 0"}
		}
		if p.SuccessCount > p.TotalAttempts {
			return &ValidationError{
				Field:  "success_count",
				Reason: fmt.Sprintf("success_count %d exceeds total_attempts %d", p.SuccessCount, p.TotalAttempts),
			}
		}
		if p.AverageDuration < 0 {
			return &ValidationError{Field: "average_duration", Reason: "must be >= 0"}
		}
	case *StrategicMemory:
		if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
			return &ValidationError{
				Field:  "confidence_score",
				Reason: fmt.Sprintf("must be in [0, 1], got %g", p.ConfidenceScore),
			}
		}
	default:
		return &ValidationError{Field: "payload", Reason: fmt.Sprintf("unsupported payload %T", payload)}
	}
	return nil
}

// validateRecord checks the full base+subtype invariants of an assembled
// record. Used on the consolidation path and by store backends that accept
// externally produced records.
func validateRecord(rec *Record) error {
	if rec == nil {
		return &ValidationError{Field: "record", Reason: "record is required"}
	}
	if rec.ID == "" {
		return &ValidationError{Field: "id", Reason: "id is required"}
	}
	if rec.Content == "" {
		return &ValidationError{Field: "content", Reason: "content is required"}
	}
	if !rec.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown memory type %q", rec.Type)}
	}
	if !rec.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", rec.Status)}
	}
	if rec.Importance < 0 {
		return &ValidationError{Field: "importance", Reason: fmt.Sprintf("must be >= 0, got %g", rec.Importance)}
	}
	if rec.AccessCount < 0 {
		return &ValidationError{Field: "access_count", Reason: "must be >= 0"}
	}
	if rec.DecayRate <= 0 {
		return &ValidationError{Field: "decay_rate", Reason: fmt.Sprintf("must be > 0, got %g", rec.DecayRate)}
	}

	payload := rec.Payload()
	if payload == nil {
		return &ValidationError{
			Field:  "payload",
			Reason: fmt.Sprintf("record type %s has no matching subtype payload", rec.Type),
		}
	}
	if n := subtypeCount(rec); n != 1 {
		return &ValidationError{Field: "payload", Reason: fmt.Sprintf("expected exactly one subtype payload, got %d", n)}
	}
	return validatePayload(rec.Type, payload)
}

func subtypeCount(rec *Record) int {
	n := 0
	if rec.Episodic != nil {
		n++
	}
	if rec.Semantic != nil {
		n++
	}
	if rec.Procedural != nil {
		n++
	}
	if rec.Strategic != nil {
		n++
	}
	return n
}
