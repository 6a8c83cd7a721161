// Package models defines API request/response data structures.
package models

import (
	"time"

	"github.com/engramhq/engram/pkg/memory"
)

// WorkingItemRequest stages a candidate memory in the working buffer.
type WorkingItemRequest struct {
	// Content is the raw text of the candidate memory.
	Content string `json:"content" validate:"required,min=1" example:"deployed billing service v2 to production"`

	// Embedding is the fixed-dimension vector for the content. Optional;
	// items without one are excluded from similarity search after promotion.
	Embedding []float32 `json:"embedding,omitempty"`

	// Metadata holds caller-supplied annotations (source, session, tags).
	Metadata map[string]interface{} `json:"metadata,omitempty" example:"session:abc123,source:executor"`

	// TTLSeconds overrides the buffer's default expiry.
	TTLSeconds int `json:"ttl_seconds,omitempty" validate:"omitempty,min=1" example:"3600"`
}

// Item converts the request into a working item.
func (r *WorkingItemRequest) Item(now time.Time) *memory.WorkingItem {
	item := &memory.WorkingItem{
		Content:   r.Content,
		Embedding: r.Embedding,
		Metadata:  memory.Properties(r.Metadata),
	}
	if r.TTLSeconds > 0 {
		expiry := now.Add(time.Duration(r.TTLSeconds) * time.Second)
		item.ExpiresAt = &expiry
	}
	return item
}

// WorkingListResponse lists the items currently staged in the buffer.
type WorkingListResponse struct {
	// Items are the unexpired working items, unordered.
	Items []*memory.WorkingItem `json:"items"`

	// Total is the number of items returned.
	Total int `json:"total"`
}

// DecisionRequest carries the caller's promotion policy outcome.
type DecisionRequest struct {
	// Importance seeds the new record's importance.
	Importance float64 `json:"importance" validate:"min=0" example:"0.8"`

	// DecayRate overrides the default per-day decay when set.
	DecayRate float64 `json:"decay_rate,omitempty" validate:"omitempty,gt=0" example:"0.05"`

	// Reason is a free-form note recorded in the create change.
	Reason string `json:"reason,omitempty" validate:"max=500" example:"novel fact about the deployment environment"`
}

// Decision converts the request into a domain decision.
func (r *DecisionRequest) Decision() memory.Decision {
	return memory.Decision{
		Importance: r.Importance,
		DecayRate:  r.DecayRate,
		Reason:     r.Reason,
	}
}

// ConsolidateRequest promotes a working item into a long-term record.
// Exactly one payload field matching Type must be set.
type ConsolidateRequest struct {
	// Type selects the long-term memory kind.
	Type string `json:"type" validate:"required,oneof=episodic semantic procedural strategic" example:"semantic"`

	// Decision is the promotion policy outcome.
	Decision DecisionRequest `json:"decision"`

	Episodic   *memory.EpisodicMemory   `json:"episodic,omitempty"`
	Semantic   *memory.SemanticMemory   `json:"semantic,omitempty"`
	Procedural *memory.ProceduralMemory `json:"procedural,omitempty"`
	Strategic  *memory.StrategicMemory  `json:"strategic,omitempty"`
}

// Payload returns the payload matching Type, or nil when it is absent. The
// engine rejects nil and mismatched payloads, so handlers pass the result
// through unchecked.
func (r *ConsolidateRequest) Payload() memory.SubtypePayload {
	switch memory.Type(r.Type) {
	case memory.TypeEpisodic:
		if r.Episodic != nil {
			return r.Episodic
		}
	case memory.TypeSemantic:
		if r.Semantic != nil {
			return r.Semantic
		}
	case memory.TypeProcedural:
		if r.Procedural != nil {
			return r.Procedural
		}
	case memory.TypeStrategic:
		if r.Strategic != nil {
			return r.Strategic
		}
	}
	return nil
}

// MemoryListResponse is a paginated list of scored records.
type MemoryListResponse struct {
	// Memories are the matching records, newest first, scored at read time.
	Memories []*memory.ScoredRecord `json:"memories"`

	// Total is the number of records matching the filter before paging.
	Total int `json:"total"`

	// Limit is the page size used.
	Limit int `json:"limit"`

	// Offset is the starting position in the result set.
	Offset int `json:"offset"`
}

// LinkRequest creates or refreshes a typed relationship from the memory in
// the URL to another memory.
type LinkRequest struct {
	// ToID is the target memory id.
	ToID string `json:"to_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`

	// Type is the relationship type.
	Type string `json:"relationship_type" validate:"required,min=1,max=100" example:"caused_by"`

	// Properties annotate the edge.
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// LinksResponse lists a memory's relationships in creation order.
type LinksResponse struct {
	Links []*memory.Relationship `json:"links"`
	Total int                    `json:"total"`
}

// HistoryResponse is a memory's append-only audit trail ordered by sequence.
type HistoryResponse struct {
	Changes []*memory.ChangeRecord `json:"changes"`
	Total   int                    `json:"total"`
}

// AttemptRequest folds one execution outcome into a procedural memory.
type AttemptRequest struct {
	// Success reports whether the attempt succeeded.
	Success bool `json:"success" example:"true"`

	// DurationMS is the attempt duration in milliseconds.
	DurationMS int64 `json:"duration_ms,omitempty" validate:"omitempty,min=0" example:"1250"`

	// FailurePoint names the step that failed. Recorded on failures only.
	FailurePoint string `json:"failure_point,omitempty" validate:"max=200" example:"apply database migration"`
}

// Outcome converts the request into a domain attempt outcome.
func (r *AttemptRequest) Outcome() memory.AttemptOutcome {
	return memory.AttemptOutcome{
		Success:      r.Success,
		Duration:     time.Duration(r.DurationMS) * time.Millisecond,
		FailurePoint: r.FailurePoint,
	}
}

// ValidationRequest re-grades a semantic memory's confidence.
type ValidationRequest struct {
	// Confidence is the new confidence estimate.
	Confidence float64 `json:"confidence" validate:"min=0,max=1" example:"0.95"`

	// Source, when set, is appended to the memory's source references.
	Source string `json:"source,omitempty" validate:"max=500" example:"https://wiki.internal/runbooks/billing"`
}

// RecallRequest is an embedding similarity query. Recall reinforces every
// hit; Search with the same body does not.
type RecallRequest struct {
	// Embedding is the query vector.
	Embedding []float32 `json:"embedding" validate:"required,min=1"`

	// K caps the number of hits. Zero means the server default.
	K int `json:"k,omitempty" validate:"omitempty,min=1,max=100" example:"10"`

	// Type narrows the search to one memory type.
	Type string `json:"type,omitempty" validate:"omitempty,oneof=episodic semantic procedural strategic" example:"semantic"`

	// Status narrows the search to one lifecycle status. Defaults to active.
	Status string `json:"status,omitempty" validate:"omitempty,oneof=active archived invalidated" example:"active"`
}

// Filter converts the request's narrowing fields into a search filter.
func (r *RecallRequest) Filter() memory.SearchFilter {
	return memory.SearchFilter{
		Type:   memory.Type(r.Type),
		Status: memory.Status(r.Status),
	}
}

// RecallResponse lists search hits ascending by distance.
type RecallResponse struct {
	Results []memory.RecallResult `json:"results"`
	Total   int                   `json:"total"`
}

// TypeHealthResponse is the per-type aggregate view over active memories.
type TypeHealthResponse struct {
	Types []memory.TypeHealth `json:"types"`
}

// ProcedureRankingResponse ranks procedural memories by effectiveness.
type ProcedureRankingResponse struct {
	Procedures []memory.ProcedureStats `json:"procedures"`
	Total      int                     `json:"total"`
}
