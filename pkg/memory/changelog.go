package memory

import "time"

// Change entries are built by the engine and written by the store inside the
// same transaction as the mutation they describe, which is what makes the
// audit trail trustworthy for the irreversible invalidated transition. The
// store assigns the per-memory sequence at commit time.

func newChange(id, memoryID string, at time.Time, change ChangeType, oldValue, newValue Properties) *ChangeRecord {
	return &ChangeRecord{
		ID:        id,
		MemoryID:  memoryID,
		ChangedAt: at,
		Change:    change,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
}

// createSnapshot captures the initial state recorded with a consolidation.
func createSnapshot(rec *Record, decision Decision) Properties {
	snapshot := Properties{
		"type":       string(rec.Type),
		"status":     string(rec.Status),
		"importance": rec.Importance,
		"decay_rate": rec.DecayRate,
	}
	if decision.Reason != "" {
		snapshot["reason"] = decision.Reason
	}
	return snapshot
}

// accessSnapshots captures the before/after of one reinforcement.
func accessSnapshots(delta ReinforceDelta, accessedAt time.Time) (Properties, Properties) {
	oldValue := Properties{
		"importance":   delta.OldImportance,
		"access_count": delta.OldAccessCount,
	}
	newValue := Properties{
		"importance":    delta.NewImportance,
		"access_count":  delta.NewAccessCount,
		"last_accessed": accessedAt.Format(time.RFC3339Nano),
	}
	return oldValue, newValue
}

// transitionSnapshots captures a lifecycle transition, including the derived
// relevance the decision was based on.
func transitionSnapshots(from, to Status, relevance float64) (Properties, Properties) {
	oldValue := Properties{
		"status":          string(from),
		"relevance_score": relevance,
	}
	newValue := Properties{
		"status": string(to),
	}
	return oldValue, newValue
}

// attemptSnapshots captures the outcome counters around one procedural
// attempt.
func attemptSnapshots(before, after *ProceduralMemory, outcome AttemptOutcome) (Properties, Properties) {
	oldValue := Properties{
		"success_count":  before.SuccessCount,
		"total_attempts": before.TotalAttempts,
	}
	newValue := Properties{
		"success_count":  after.SuccessCount,
		"total_attempts": after.TotalAttempts,
		"success":        outcome.Success,
	}
	if outcome.FailurePoint != "" {
		newValue["failure_point"] = outcome.FailurePoint
	}
	return oldValue, newValue
}

// validationSnapshots captures a semantic confidence revision.
func validationSnapshots(before, after *SemanticMemory) (Properties, Properties) {
	oldValue := Properties{
		"confidence": before.Confidence,
	}
	if before.LastValidated != nil {
		oldValue["last_validated"] = before.LastValidated.Format(time.RFC3339Nano)
	}
	newValue := Properties{
		"confidence": after.Confidence,
	}
	if after.LastValidated != nil {
		newValue["last_validated"] = after.LastValidated.Format(time.RFC3339Nano)
	}
	return oldValue, newValue
}

// linkSnapshot captures an edge creation or property overwrite on the
// from-memory's trail.
func linkSnapshot(rel *Relationship) Properties {
	return Properties{
		"to_id":             rel.ToID,
		"relationship_type": rel.RelType,
	}
}
