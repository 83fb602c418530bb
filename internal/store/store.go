// internal/store/store.go
//
// Persistence interface for the suggestion service: user accounts and
// one score row per user/game/day. Backed by memory (tests) or SQLite
// (production).

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for missing users.
var ErrNotFound = errors.New("not found")

// User is an account row.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ScoreResult is one recorded daily score.
type ScoreResult struct {
	ID        string
	UserID    string
	GameID    string
	Date      string // YYYY-MM-DD
	Score     int
	CreatedAt time.Time
}

// LeaderRow is a leaderboard entry for one date.
type LeaderRow struct {
	UserID string `json:"userId"`
	GameID string `json:"gameId"`
	Score  int    `json:"score"`
}

// Store is the persistence boundary for the service.
type Store interface {
	// CreateUser inserts a new account.
	CreateUser(ctx context.Context, u User) error

	// UserByUsername loads an account, ErrNotFound when missing.
	// Lookup is case-insensitive.
	UserByUsername(ctx context.Context, username string) (User, error)

	// UserByID loads an account, ErrNotFound when missing.
	UserByID(ctx context.Context, id string) (User, error)

	// PlayedGames returns the set of game ids the user has a recorded
	// score for on the given date.
	PlayedGames(ctx context.Context, userID, date string) (map[string]bool, error)

	// RecordScore inserts a score row. A row already existing for the
	// same user/game/date is left untouched and reported with
	// recorded=false; this is not an error.
	RecordScore(ctx context.Context, r ScoreResult) (recorded bool, err error)

	// Leaderboard returns the top scores for a date, best first.
	Leaderboard(ctx context.Context, date string, limit int) ([]LeaderRow, error)
}
