// internal/games/reaction/reaction.go
//
// Reaction engine: a fixed number of rounds, each a stimulus the
// player must answer within a response window. Faster responses earn
// more points; a late or missed response scores nothing and a
// premature one is penalized.

package reaction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/difficulty"
)

// Variant is the per-difficulty configuration.
type Variant struct {
	Rounds       int
	Window       time.Duration // response window per round
	MaxPoints    int           // fastest-possible points per round
	EarlyPenalty int           // points lost for reacting before the stimulus
	TimeLimit    time.Duration // session clock
}

var variants = map[difficulty.Level]Variant{
	difficulty.Easy:     {Rounds: 5, Window: 1200 * time.Millisecond, MaxPoints: 40, EarlyPenalty: 5, TimeLimit: 45 * time.Second},
	difficulty.Moderate: {Rounds: 8, Window: 900 * time.Millisecond, MaxPoints: 25, EarlyPenalty: 8, TimeLimit: 60 * time.Second},
	difficulty.Hard:     {Rounds: 10, Window: 600 * time.Millisecond, MaxPoints: 20, EarlyPenalty: 10, TimeLimit: 75 * time.Second},
}

// VariantFor returns the configuration for a level.
func VariantFor(level difficulty.Level) (Variant, bool) {
	v, ok := variants[level]
	return v, ok
}

var ErrFinished = errors.New("game finished")

// Game is one reaction run.
type Game struct {
	variant  Variant
	round    int
	hits     int
	score    float64
	finished bool
}

// New starts a run for the level.
func New(level difficulty.Level) (*Game, error) {
	v, ok := VariantFor(level)
	if !ok {
		return nil, fmt.Errorf("no reaction variant for level %q", level)
	}
	return &Game{variant: v}, nil
}

// RoundResult describes the outcome of one round.
type RoundResult struct {
	Points   int
	Hit      bool
	Early    bool
	Finished bool
}

// React records the player's response time for the current round.
// elapsed < 0 means the player reacted before the stimulus appeared.
func (g *Game) React(elapsed time.Duration) (RoundResult, error) {
	if g.finished {
		return RoundResult{}, ErrFinished
	}
	var res RoundResult
	switch {
	case elapsed < 0:
		res.Early = true
		g.score -= float64(g.variant.EarlyPenalty)
	case elapsed <= g.variant.Window:
		// Linear falloff from MaxPoints at 0 to 1 point at the window
		// edge.
		frac := 1 - float64(elapsed)/float64(g.variant.Window)
		pts := int(math.Max(1, math.Round(frac*float64(g.variant.MaxPoints))))
		res.Hit = true
		res.Points = pts
		g.hits++
		g.score += float64(pts)
	default:
		// Too slow: round consumed, no points.
	}
	g.round++
	if g.round >= g.variant.Rounds {
		g.finished = true
		res.Finished = true
	}
	return res, nil
}

// Score is the raw accumulated score.
func (g *Game) Score() float64 { return g.score }

// Won reports whether the player hit a majority of rounds.
func (g *Game) Won() bool { return g.hits*2 > g.variant.Rounds }

// Round returns the number of completed rounds.
func (g *Game) Round() int { return g.round }

// Finished reports whether play has ended.
func (g *Game) Finished() bool { return g.finished }

// Expire ends the game when the clock runs out.
func (g *Game) Expire() { g.finished = true }

// Variant returns the active configuration.
func (g *Game) Variant() Variant { return g.variant }
