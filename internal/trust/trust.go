// Package trust maintains the bounded reputation score per submitter. The
// engine is the only writer of the score field; every mutation comes from
// the closed action set and leaves exactly one audit trail entry.
package trust

import (
	"fmt"
	"log"
	"math"

	"speakup/backend/internal/config"
	"speakup/backend/internal/models"
)

// Actions accepted by Apply. Extending the set means extending the delta
// table in config, never accepting raw deltas from callers.
const (
	ActionResolvedPositive = "complaint_resolved_positive"
	ActionValidated        = "complaint_validated"
	ActionRepeatedValid    = "repeated_valid"
	ActionSpamDetected     = "spam_detected"
	ActionFalseComplaint   = "false_complaint"
	ActionLowRating        = "low_rating"
	ActionHighRating       = "high_rating"
)

// Store is the locked read-modify-write surface the engine mutates scores
// through. The callback runs while the submitter's row is locked, so
// same-submitter mutations serialize.
type Store interface {
	ApplyTrustAction(userID string, complaintID *string, action string, calc func(current int) (delta, next int)) (*models.TrustHistory, error)
}

type Engine struct {
	Store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{Store: store}
}

// Result reports a single applied mutation.
type Result struct {
	OldScore int `json:"old_score"`
	NewScore int `json:"new_score"`
	Change   int `json:"change"`
}

// Apply looks up the action's base delta, dampens it against the current
// score, clamps the result to the score bounds, persists it, and appends
// the history entry. Unknown actions are rejected without side effects.
func (e *Engine) Apply(userID, action string, complaintID *string) (*Result, error) {
	if _, ok := config.TrustActionDeltas[action]; !ok {
		return nil, fmt.Errorf("unknown trust action %q", action)
	}

	entry, err := e.Store.ApplyTrustAction(userID, complaintID, action, func(current int) (int, int) {
		delta := Adjust(action, current)
		return delta, Clamp(current + delta)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Trust action %s for user %s: %d -> %d (%+d)",
		action, userID, entry.OldScore, entry.NewScore, entry.Change)

	return &Result{OldScore: entry.OldScore, NewScore: entry.NewScore, Change: entry.Change}, nil
}

// Adjust returns the effective delta for an action at the given score.
// Submitters near the floor lose less on penalties; submitters near the
// ceiling gain less on rewards. Rounded to the nearest integer, ties
// toward positive infinity: a dampened -2.5 becomes -2, not -3.
func Adjust(action string, current int) int {
	base := float64(config.TrustActionDeltas[action])

	if current < config.LowScoreThreshold && base < 0 {
		base *= config.LowScoreDampening
	}
	if current > config.HighScoreThreshold && base > 0 {
		base *= config.HighScoreDampening
	}

	return int(math.Floor(base + 0.5))
}

// Clamp bounds a score to [MinTrustScore, MaxTrustScore].
func Clamp(score int) int {
	if score < config.MinTrustScore {
		return config.MinTrustScore
	}
	if score > config.MaxTrustScore {
		return config.MaxTrustScore
	}
	return score
}
