// internal/games/recall/recall.go
//
// Sequence-recall engine: the front end shows a growing sequence of
// symbols during the study phase, the player repeats it from memory.
// A wrong input costs a life and replays the same sequence; surviving
// all rounds wins.

package recall

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/difficulty"
)

// Variant is the per-difficulty configuration.
type Variant struct {
	StartLength    int           // sequence length in round 1
	Rounds         int           // rounds to survive for a win
	Symbols        int           // distinct symbols on the pad
	Lives          int           // allowed wrong inputs
	TimeLimit      time.Duration // session clock
	PointsPerRound int
}

var variants = map[difficulty.Level]Variant{
	difficulty.Easy:     {StartLength: 3, Rounds: 5, Symbols: 4, Lives: 3, TimeLimit: 90 * time.Second, PointsPerRound: 40},
	difficulty.Moderate: {StartLength: 4, Rounds: 6, Symbols: 6, Lives: 2, TimeLimit: 2 * time.Minute, PointsPerRound: 33},
	difficulty.Hard:     {StartLength: 5, Rounds: 8, Symbols: 8, Lives: 1, TimeLimit: 3 * time.Minute, PointsPerRound: 25},
}

// VariantFor returns the configuration for a level.
func VariantFor(level difficulty.Level) (Variant, bool) {
	v, ok := variants[level]
	return v, ok
}

var ErrFinished = errors.New("game finished")

// Game is one recall run.
type Game struct {
	variant  Variant
	rng      *rand.Rand
	sequence []int
	pos      int // next expected index into sequence
	round    int // 1-based
	lives    int
	rounds   int // completed rounds
	finished bool
	won      bool
}

// New starts a run at round 1 with a seeded sequence.
func New(level difficulty.Level, seed int64) (*Game, error) {
	v, ok := VariantFor(level)
	if !ok {
		return nil, fmt.Errorf("no recall variant for level %q", level)
	}
	g := &Game{variant: v, rng: rand.New(rand.NewSource(seed)), round: 1, lives: v.Lives}
	for i := 0; i < v.StartLength; i++ {
		g.extend()
	}
	return g, nil
}

func (g *Game) extend() {
	g.sequence = append(g.sequence, g.rng.Intn(g.variant.Symbols))
}

// Sequence returns the sequence to show during the study phase.
func (g *Game) Sequence() []int {
	return append([]int(nil), g.sequence...)
}

// InputResult describes the outcome of one symbol input.
type InputResult struct {
	Correct       bool
	RoundComplete bool // sequence fully repeated; study phase restarts
	LifeLost      bool
	Finished      bool
}

// Input checks the next symbol against the sequence.
func (g *Game) Input(symbol int) (InputResult, error) {
	if g.finished {
		return InputResult{}, ErrFinished
	}
	if symbol != g.sequence[g.pos] {
		g.lives--
		g.pos = 0 // replay the same sequence
		res := InputResult{LifeLost: true}
		if g.lives <= 0 {
			g.finished = true
			res.Finished = true
		}
		return res, nil
	}
	g.pos++
	res := InputResult{Correct: true}
	if g.pos < len(g.sequence) {
		return res, nil
	}

	// Round complete.
	g.rounds++
	g.pos = 0
	res.RoundComplete = true
	if g.rounds >= g.variant.Rounds {
		g.finished = true
		g.won = true
		res.Finished = true
		return res, nil
	}
	g.round++
	g.extend()
	return res, nil
}

// Score is the raw score: completed rounds times the round value.
func (g *Game) Score() float64 { return float64(g.rounds * g.variant.PointsPerRound) }

// Round returns the current 1-based round.
func (g *Game) Round() int { return g.round }

// Lives returns remaining lives.
func (g *Game) Lives() int { return g.lives }

// Won reports whether every round was completed.
func (g *Game) Won() bool { return g.won }

// Finished reports whether play has ended.
func (g *Game) Finished() bool { return g.finished }

// Expire ends the game when the clock runs out.
func (g *Game) Expire() { g.finished = true }

// Variant returns the active configuration.
func (g *Game) Variant() Variant { return g.variant }
