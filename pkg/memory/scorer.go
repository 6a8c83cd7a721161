package memory

import (
	"math"
	"time"
)

// DefaultDecayRate is the per-day exponential decay applied when a
// consolidation decision does not override it.
const DefaultDecayRate = 0.01

// defaultReinforcementWeight scales the logarithmic importance boost applied
// on each access.
const defaultReinforcementWeight = 0.1

// Scorer computes derived relevance and applies the reinforcement rule.
// Score is a pure function and safe for unsynchronized concurrent use;
// Reinforce mutates the record it is given and is meant to run on a private
// copy inside a compare-and-set loop.
type Scorer struct {
	weight float64
}

// NewScorer creates a scorer. A non-positive weight selects the default
// reinforcement weight.
func NewScorer(weight float64) *Scorer {
	if weight <= 0 {
		weight = defaultReinforcementWeight
	}
	return &Scorer{weight: weight}
}

// Score derives the relevance at the given instant:
//
//	relevance = importance * exp(-decay_rate * age_in_days)
//
// Age is measured from CreatedAt; reinforcement raises importance instead of
// resetting the decay clock.
func (s *Scorer) Score(rec *Record, asOf time.Time) float64 {
	age := asOf.Sub(rec.CreatedAt).Hours() / 24
	if age < 0 {
		age = 0
	}
	return rec.Importance * math.Exp(-rec.DecayRate*age)
}

// ReinforceDelta reports the state change produced by one reinforcement,
// used to build the access change entry.
type ReinforceDelta struct {
	OldImportance  float64
	NewImportance  float64
	OldAccessCount int
	NewAccessCount int
}

// Reinforce applies one access to the record:
//
//	access_count' = access_count + 1
//	importance'   = importance * (1 + ln(access_count'+1) * weight)
//	last_accessed = now
//
// The multiplier is always >= 1, so importance never decreases. CreatedAt is
// untouched: decay keeps its original reference point.
func (s *Scorer) Reinforce(rec *Record, now time.Time) ReinforceDelta {
	delta := ReinforceDelta{
		OldImportance:  rec.Importance,
		OldAccessCount: rec.AccessCount,
	}

	rec.AccessCount++
	rec.Importance *= 1 + math.Log(float64(rec.AccessCount)+1)*s.weight
	accessed := now
	rec.LastAccessed = &accessed

	delta.NewImportance = rec.Importance
	delta.NewAccessCount = rec.AccessCount
	return delta
}
