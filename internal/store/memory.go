// internal/store/memory.go
//
// In-memory Store used by tests and throwaway environments. State is
// lost on restart; concurrency-safe via RWMutex.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memory struct {
	mu     sync.RWMutex
	users  map[string]User        // keyed by id
	scores map[string]ScoreResult // keyed by userID|gameID|date
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		users:  make(map[string]User),
		scores: make(map[string]ScoreResult),
	}
}

func scoreKey(userID, gameID, date string) string {
	return userID + "|" + gameID + "|" + date
}

func (m *memory) CreateUser(ctx context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memory) UserByUsername(ctx context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *memory) UserByID(ctx context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return User{}, ErrNotFound
}

func (m *memory) PlayedGames(ctx context.Context, userID, date string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool)
	for _, r := range m.scores {
		if r.UserID == userID && r.Date == date {
			out[r.GameID] = true
		}
	}
	return out, nil
}

func (m *memory) RecordScore(ctx context.Context, r ScoreResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey(r.UserID, r.GameID, r.Date)
	if _, exists := m.scores[key]; exists {
		return false, nil
	}
	m.scores[key] = r
	return true, nil
}

func (m *memory) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderRow, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	rows := make([]ScoreResult, 0, len(m.scores))
	for _, r := range m.scores {
		if r.Date == date {
			rows = append(rows, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]LeaderRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, LeaderRow{UserID: r.UserID, GameID: r.GameID, Score: r.Score})
	}
	return out, nil
}
