package memory

import "time"

// cloneRecord deep-copies a record so callers and store backends never share
// mutable state.
func cloneRecord(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	clone := *rec
	if rec.Embedding != nil {
		clone.Embedding = append([]float32(nil), rec.Embedding...)
	}
	clone.LastAccessed = cloneTimePtr(rec.LastAccessed)
	clone.ArchivedAt = cloneTimePtr(rec.ArchivedAt)
	clone.Episodic = cloneEpisodic(rec.Episodic)
	clone.Semantic = cloneSemantic(rec.Semantic)
	clone.Procedural = cloneProcedural(rec.Procedural)
	clone.Strategic = cloneStrategic(rec.Strategic)
	return &clone
}

func cloneEpisodic(p *EpisodicMemory) *EpisodicMemory {
	if p == nil {
		return nil
	}
	clone := *p
	clone.ActionTaken = cloneProperties(p.ActionTaken)
	clone.Context = cloneProperties(p.Context)
	clone.Result = cloneProperties(p.Result)
	clone.EventTime = cloneTimePtr(p.EventTime)
	return &clone
}

func cloneSemantic(p *SemanticMemory) *SemanticMemory {
	if p == nil {
		return nil
	}
	clone := *p
	clone.LastValidated = cloneTimePtr(p.LastValidated)
	clone.SourceReferences = append([]string(nil), p.SourceReferences...)
	clone.Contradictions = append([]string(nil), p.Contradictions...)
	clone.Category = append([]string(nil), p.Category...)
	clone.RelatedConcepts = append([]string(nil), p.RelatedConcepts...)
	return &clone
}

func cloneProcedural(p *ProceduralMemory) *ProceduralMemory {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Steps != nil {
		clone.Steps = make([]Properties, len(p.Steps))
		for i, step := range p.Steps {
			clone.Steps[i] = cloneProperties(step)
		}
	}
	clone.Prerequisites = append([]string(nil), p.Prerequisites...)
	clone.FailurePoints = append([]string(nil), p.FailurePoints...)
	return &clone
}

func cloneStrategic(p *StrategicMemory) *StrategicMemory {
	if p == nil {
		return nil
	}
	clone := *p
	if p.SupportingEvidence != nil {
		clone.SupportingEvidence = make([]Properties, len(p.SupportingEvidence))
		for i, ev := range p.SupportingEvidence {
			clone.SupportingEvidence[i] = cloneProperties(ev)
		}
	}
	clone.SuccessMetrics = cloneProperties(p.SuccessMetrics)
	if p.AdaptationHistory != nil {
		clone.AdaptationHistory = make([]Properties, len(p.AdaptationHistory))
		for i, entry := range p.AdaptationHistory {
			clone.AdaptationHistory[i] = cloneProperties(entry)
		}
	}
	clone.ContextApplicability = cloneProperties(p.ContextApplicability)
	return &clone
}

func cloneRelationship(rel *Relationship) *Relationship {
	if rel == nil {
		return nil
	}
	clone := *rel
	clone.Properties = cloneProperties(rel.Properties)
	return &clone
}

func cloneChange(change *ChangeRecord) *ChangeRecord {
	if change == nil {
		return nil
	}
	clone := *change
	clone.OldValue = cloneProperties(change.OldValue)
	clone.NewValue = cloneProperties(change.NewValue)
	return &clone
}

func cloneItem(item *WorkingItem) *WorkingItem {
	if item == nil {
		return nil
	}
	clone := *item
	if item.Embedding != nil {
		clone.Embedding = append([]float32(nil), item.Embedding...)
	}
	clone.Metadata = cloneProperties(item.Metadata)
	clone.ExpiresAt = cloneTimePtr(item.ExpiresAt)
	return &clone
}

// cloneProperties copies one map level deep. Nested values are shared;
// callers treat property payloads as immutable once written.
func cloneProperties(p Properties) Properties {
	if p == nil {
		return nil
	}
	clone := make(Properties, len(p))
	for key, value := range p {
		clone[key] = value
	}
	return clone
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
