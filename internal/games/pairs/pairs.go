// internal/games/pairs/pairs.go
//
// Memory-pairs engine: a shuffled board of tile pairs, flip two at a
// time, clear the board before the clock runs out. Rendering, input
// and audio live in the front end; this package owns board state,
// move validation and scoring.

package pairs

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/difficulty"
)

// Variant is the per-difficulty configuration.
type Variant struct {
	Pairs           int           // number of tile pairs on the board
	TimeLimit       time.Duration // session clock
	StudyTime       time.Duration // how long the board shows face-up first
	MatchPoints     int           // points per cleared pair
	MismatchPenalty int           // points lost per failed attempt
}

var variants = map[difficulty.Level]Variant{
	difficulty.Easy:     {Pairs: 6, TimeLimit: 60 * time.Second, StudyTime: 3 * time.Second, MatchPoints: 30, MismatchPenalty: 2},
	difficulty.Moderate: {Pairs: 8, TimeLimit: 90 * time.Second, StudyTime: 3 * time.Second, MatchPoints: 25, MismatchPenalty: 3},
	difficulty.Hard:     {Pairs: 10, TimeLimit: 120 * time.Second, StudyTime: 2 * time.Second, MatchPoints: 20, MismatchPenalty: 4},
}

// VariantFor returns the configuration for a level.
func VariantFor(level difficulty.Level) (Variant, bool) {
	v, ok := variants[level]
	return v, ok
}

var (
	ErrFinished   = errors.New("game finished")
	ErrTileOpen   = errors.New("tile already face up")
	ErrTileGone   = errors.New("tile already matched")
	ErrOutOfRange = errors.New("tile index out of range")
)

// Game is one memory-pairs board.
type Game struct {
	variant    Variant
	board      []int // pair id per tile
	matched    []bool
	open       []int // indexes currently face up (0..2)
	moves      int
	matches    int
	mismatches int
	finished   bool
}

// New deals a shuffled board for the level. The seed makes the deal
// reproducible; pass a random value in production.
func New(level difficulty.Level, seed int64) (*Game, error) {
	v, ok := VariantFor(level)
	if !ok {
		return nil, fmt.Errorf("no pairs variant for level %q", level)
	}
	board := make([]int, 0, v.Pairs*2)
	for id := 0; id < v.Pairs; id++ {
		board = append(board, id, id)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(board), func(i, j int) { board[i], board[j] = board[j], board[i] })
	return &Game{
		variant: v,
		board:   board,
		matched: make([]bool, len(board)),
	}, nil
}

// FlipResult describes the outcome of flipping one tile.
type FlipResult struct {
	PairID     int
	Open       []int // indexes face up after this flip
	Matched    bool  // this flip completed a matching pair
	Mismatched bool  // this flip completed a failed attempt
	Cleared    bool  // the whole board is cleared
}

// Flip turns the tile at index face up. When it is the second open
// tile, the attempt is scored and both tiles either clear or flip
// back.
func (g *Game) Flip(index int) (FlipResult, error) {
	if g.finished {
		return FlipResult{}, ErrFinished
	}
	if index < 0 || index >= len(g.board) {
		return FlipResult{}, ErrOutOfRange
	}
	if g.matched[index] {
		return FlipResult{}, ErrTileGone
	}
	for _, i := range g.open {
		if i == index {
			return FlipResult{}, ErrTileOpen
		}
	}

	g.open = append(g.open, index)
	res := FlipResult{PairID: g.board[index], Open: append([]int(nil), g.open...)}
	if len(g.open) < 2 {
		return res, nil
	}

	g.moves++
	a, b := g.open[0], g.open[1]
	g.open = nil
	if g.board[a] == g.board[b] {
		g.matched[a], g.matched[b] = true, true
		g.matches++
		res.Matched = true
		if g.matches == g.variant.Pairs {
			g.finished = true
			res.Cleared = true
		}
	} else {
		g.mismatches++
		res.Mismatched = true
	}
	res.Open = nil
	return res, nil
}

// Score is the raw score: cleared pairs minus mismatch penalties.
// The session clamps it to [0, max] at game over.
func (g *Game) Score() float64 {
	return float64(g.matches*g.variant.MatchPoints - g.mismatches*g.variant.MismatchPenalty)
}

// Won reports whether the board was fully cleared.
func (g *Game) Won() bool { return g.matches == g.variant.Pairs }

// Finished reports whether play has ended.
func (g *Game) Finished() bool { return g.finished }

// Expire ends the game when the clock runs out.
func (g *Game) Expire() { g.finished = true }

// Moves returns the number of completed two-tile attempts.
func (g *Game) Moves() int { return g.moves }

// Tiles returns the board size.
func (g *Game) Tiles() int { return len(g.board) }

// Variant returns the active configuration.
func (g *Game) Variant() Variant { return g.variant }
