package memory

import (
	"time"
)

// Type discriminates the four kinds of long-term memory.
type Type string

const (
	TypeEpisodic   Type = "episodic"
	TypeSemantic   Type = "semantic"
	TypeProcedural Type = "procedural"
	TypeStrategic  Type = "strategic"
)

// AllTypes returns every valid memory type.
func AllTypes() []Type {
	return []Type{TypeEpisodic, TypeSemantic, TypeProcedural, TypeStrategic}
}

// IsValid reports whether t is a known memory type.
func (t Type) IsValid() bool {
	switch t {
	case TypeEpisodic, TypeSemantic, TypeProcedural, TypeStrategic:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of a memory record. Transitions only move
// forward: active -> archived -> invalidated, with invalidated terminal.
type Status string

const (
	StatusActive      Status = "active"
	StatusArchived    Status = "archived"
	StatusInvalidated Status = "invalidated"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusInvalidated:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle state machine permits moving
// from s to next. Direct active -> invalidated is disallowed: a record must
// pass through archived so it stays auditable before leaving working sets.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusArchived
	case StatusArchived:
		return next == StatusInvalidated
	case StatusInvalidated:
		return false
	default:
		return false
	}
}

// ChangeType labels an entry in a memory's audit trail.
type ChangeType string

const (
	ChangeCreate     ChangeType = "create"
	ChangeAccess     ChangeType = "access"
	ChangeArchive    ChangeType = "archive"
	ChangeInvalidate ChangeType = "invalidate"
	ChangeLink       ChangeType = "link"
	ChangeAttempt    ChangeType = "attempt"
	ChangeValidate   ChangeType = "validate"
)

// Direction selects which edges a relationship query returns.
type Direction string

const (
	DirectionOutgoing Direction = "out"
	DirectionIncoming Direction = "in"
	DirectionBoth     Direction = "both"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionOutgoing, DirectionIncoming, DirectionBoth:
		return true
	default:
		return false
	}
}

// Properties is a schema-less property map used for open payload fields
// (episodic context, relationship properties, procedural steps, change
// snapshots). Values must be JSON-serializable.
type Properties map[string]any

// WorkingItem is a short-lived entry staged in the working buffer awaiting a
// promotion decision. Destroyed on promotion or expiry.
type WorkingItem struct {
	// ID identifies the item within the buffer.
	ID string `json:"id"`

	// Content is the raw text of the candidate memory.
	Content string `json:"content"`

	// Embedding is the fixed-dimension vector for the content, produced by
	// an external embedding service. May be empty when no vector exists yet.
	Embedding []float32 `json:"embedding,omitempty"`

	// Metadata carries caller-supplied annotations (source, session, tags).
	Metadata Properties `json:"metadata,omitempty"`

	// CreatedAt is when the item entered the buffer.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt, when set, is the instant the item becomes unavailable.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the item is past its expiry at the given instant.
func (w *WorkingItem) Expired(now time.Time) bool {
	return w.ExpiresAt != nil && !now.Before(*w.ExpiresAt)
}

// Record is the base long-term memory entity. Exactly one of the four
// subtype fields is non-nil, matching Type.
type Record struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`

	// Importance is the decay input, >= 0. Raised by reinforcement.
	Importance float64 `json:"importance"`

	// AccessCount is the number of reinforcing accesses.
	AccessCount int `json:"access_count"`

	// LastAccessed is the instant of the most recent reinforcing access.
	LastAccessed *time.Time `json:"last_accessed,omitempty"`

	// DecayRate controls exponential decay per day, > 0.
	DecayRate float64 `json:"decay_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ArchivedAt is set on the active -> archived transition and drives the
	// second grace period before invalidation.
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Version is the optimistic-concurrency token. Every committed mutation
	// increments it by exactly one.
	Version uint64 `json:"version"`

	Episodic   *EpisodicMemory   `json:"episodic,omitempty"`
	Semantic   *SemanticMemory   `json:"semantic,omitempty"`
	Procedural *ProceduralMemory `json:"procedural,omitempty"`
	Strategic  *StrategicMemory  `json:"strategic,omitempty"`
}

// SubtypePayload is implemented by the four type-specific payloads. The
// method is unexported so the set of subtypes is closed.
type SubtypePayload interface {
	memoryType() Type
}

// EpisodicMemory records a concrete event: what was done, in which context,
// with what result.
type EpisodicMemory struct {
	ActionTaken Properties `json:"action_taken,omitempty"`
	Context     Properties `json:"context,omitempty"`
	Result      Properties `json:"result,omitempty"`

	// EmotionalValence grades the outcome in [-1, 1].
	EmotionalValence float64 `json:"emotional_valence"`

	// VerificationStatus marks whether the episode has been verified.
	VerificationStatus bool `json:"verification_status"`

	// EventTime is when the episode happened, as opposed to when it was
	// consolidated.
	EventTime *time.Time `json:"event_time,omitempty"`
}

func (*EpisodicMemory) memoryType() Type { return TypeEpisodic }

// SemanticMemory is a fact or concept with a confidence estimate.
type SemanticMemory struct {
	// Confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	LastValidated    *time.Time `json:"last_validated,omitempty"`
	SourceReferences []string   `json:"source_references,omitempty"`

	// Contradictions holds ids of memories contradicting this one.
	Contradictions []string `json:"contradictions,omitempty"`

	Category        []string `json:"category,omitempty"`
	RelatedConcepts []string `json:"related_concepts,omitempty"`
}

func (*SemanticMemory) memoryType() Type { return TypeSemantic }

// ProceduralMemory is a how-to: ordered steps plus an outcome history.
type ProceduralMemory struct {
	Steps         []Properties `json:"steps,omitempty"`
	Prerequisites []string     `json:"prerequisites,omitempty"`

	SuccessCount  int `json:"success_count"`
	TotalAttempts int `json:"total_attempts"`

	// AverageDuration is the running mean over recorded attempts.
	AverageDuration time.Duration `json:"average_duration"`

	FailurePoints []string `json:"failure_points,omitempty"`
}

func (*ProceduralMemory) memoryType() Type { return TypeProcedural }

// SuccessRate derives the success ratio; zero when nothing was attempted.
// Never stored.
func (p *ProceduralMemory) SuccessRate() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.SuccessCount) / float64(p.TotalAttempts)
}

// StrategicMemory captures a learned pattern and the evidence behind it.
type StrategicMemory struct {
	PatternDescription string       `json:"pattern_description"`
	SupportingEvidence []Properties `json:"supporting_evidence,omitempty"`

	// ConfidenceScore in [0, 1].
	ConfidenceScore float64 `json:"confidence_score"`

	SuccessMetrics       Properties   `json:"success_metrics,omitempty"`
	AdaptationHistory    []Properties `json:"adaptation_history,omitempty"`
	ContextApplicability Properties   `json:"context_applicability,omitempty"`
}

func (*StrategicMemory) memoryType() Type { return TypeStrategic }

// Payload returns the subtype payload matching the record's type, or nil if
// the record is malformed.
func (r *Record) Payload() SubtypePayload {
	switch r.Type {
	case TypeEpisodic:
		if r.Episodic != nil {
			return r.Episodic
		}
	case TypeSemantic:
		if r.Semantic != nil {
			return r.Semantic
		}
	case TypeProcedural:
		if r.Procedural != nil {
			return r.Procedural
		}
	case TypeStrategic:
		if r.Strategic != nil {
			return r.Strategic
		}
	}
	return nil
}

// Relationship is a directed, typed, property-bearing edge between two
// records. (FromID, ToID, RelType) is the unique key; re-linking the same
// triple overwrites Properties and keeps the original identity.
type Relationship struct {
	ID         string     `json:"id"`
	FromID     string     `json:"from_id"`
	ToID       string     `json:"to_id"`
	RelType    string     `json:"relationship_type"`
	Properties Properties `json:"properties,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ChangeRecord is one immutable entry in a memory's append-only audit trail.
type ChangeRecord struct {
	ID       string `json:"change_id"`
	MemoryID string `json:"memory_id"`

	// Sequence totally orders changes within one memory's trail, starting
	// at 1.
	Sequence uint64 `json:"sequence"`

	ChangedAt time.Time  `json:"changed_at"`
	Change    ChangeType `json:"change_type"`
	OldValue  Properties `json:"old_value,omitempty"`
	NewValue  Properties `json:"new_value,omitempty"`
}

// Decision carries the caller-side promotion policy outcome into
// consolidation: the engine does not decide what is important, only how to
// persist it.
type Decision struct {
	// Importance seeds the new record's importance, >= 0.
	Importance float64 `json:"importance"`

	// DecayRate overrides the default decay when > 0.
	DecayRate float64 `json:"decay_rate,omitempty"`

	// Reason is an optional free-form note recorded in the create change.
	Reason string `json:"reason,omitempty"`
}

// ScoredRecord pairs a record with its derived relevance at read time.
type ScoredRecord struct {
	Record *Record `json:"record"`

	// RelevanceScore is importance decayed by age. Derived on read, never
	// stored.
	RelevanceScore float64 `json:"relevance_score"`
}

// RecallResult is one reinforced hit from a recall query.
type RecallResult struct {
	Record         *Record `json:"record"`
	Distance       float64 `json:"distance"`
	RelevanceScore float64 `json:"relevance_score"`
}

// TypeHealth is the per-type aggregate view over active records.
type TypeHealth struct {
	Type            Type    `json:"type"`
	Count           int     `json:"count"`
	AvgImportance   float64 `json:"avg_importance"`
	AvgAccessCount  float64 `json:"avg_access_count"`
	AccessedLastDay int     `json:"accessed_last_day"`
	AvgRelevance    float64 `json:"avg_relevance"`
}

// ProcedureStats is one row of the procedural-effectiveness ranking, ordered
// by success rate then importance, both descending.
type ProcedureStats struct {
	MemoryID       string  `json:"memory_id"`
	Content        string  `json:"content"`
	SuccessRate    float64 `json:"success_rate"`
	TotalAttempts  int     `json:"total_attempts"`
	Importance     float64 `json:"importance"`
	RelevanceScore float64 `json:"relevance_score"`
}

// AttemptOutcome reports one execution of a procedural memory.
type AttemptOutcome struct {
	Success bool `json:"success"`

	// Duration of the attempt; folded into the running average when > 0.
	Duration time.Duration `json:"duration,omitempty"`

	// FailurePoint names the step that failed, recorded on failures.
	FailurePoint string `json:"failure_point,omitempty"`
}
