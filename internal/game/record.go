// internal/game/record.go
//
// Terminal output of one play session, shared by every engine.

package game

import (
	"math"
	"time"
)

// DefaultMaxScore is the score ceiling most games use.
const DefaultMaxScore = 200

// CompletionRecord is what a finished session hands to the completion
// surface: a bounded score, the outcome, the difficulty label the
// session ran at, and elapsed play time.
type CompletionRecord struct {
	Score       int           `json:"score"`
	IsVictory   bool          `json:"isVictory"`
	Difficulty  string        `json:"difficulty"`
	TimeElapsed time.Duration `json:"timeElapsed"`
}

// ClampScore bounds a raw score to [0, max]. Non-finite input maps to
// zero; max <= 0 falls back to DefaultMaxScore. The result is rounded
// to the nearest integer point.
func ClampScore(s float64, max int) int {
	if max <= 0 {
		max = DefaultMaxScore
	}
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return 0
	}
	if s > float64(max) {
		return max
	}
	return int(math.Round(s))
}
