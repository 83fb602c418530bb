// internal/store/sqlite.go
//
// SQLite-backed Store. The schema lives in the server bootstrap
// (users, daily_scores with UNIQUE(user_id, game_id, date)); this
// file only issues queries.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened *sql.DB.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return u, nil
}

func (s *sqliteStore) UserByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE lower(username)=lower(?)`,
		username,
	)
	return scanUser(row)
}

func (s *sqliteStore) UserByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id=?`, id,
	)
	return scanUser(row)
}

func (s *sqliteStore) PlayedGames(ctx context.Context, userID, date string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id FROM daily_scores WHERE user_id=? AND date=?`, userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *sqliteStore) RecordScore(ctx context.Context, r ScoreResult) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_scores
            (id, user_id, game_id, date, score, created_at)
        VALUES (?,?,?,?,?,?)`,
		r.ID, r.UserID, r.GameID, r.Date, r.Score, r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqliteStore) Leaderboard(ctx context.Context, date string, limit int) ([]LeaderRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT user_id, game_id, score
        FROM daily_scores
        WHERE date=?
        ORDER BY score DESC, created_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LeaderRow, 0, limit)
	for rows.Next() {
		var r LeaderRow
		if err := rows.Scan(&r.UserID, &r.GameID, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
