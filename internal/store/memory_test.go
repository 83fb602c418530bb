package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	u := User{ID: "u1", Username: "Player", PasswordHash: "h", CreatedAt: time.Now()}
	if err := m.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, err := m.UserByUsername(ctx, "player") // case-insensitive
	if err != nil || got.ID != "u1" {
		t.Fatalf("UserByUsername: %+v, %v", got, err)
	}
	if _, err := m.UserByID(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("missing user: %v, want ErrNotFound", err)
	}
}

func TestMemoryRecordScoreOncePerDay(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	r := ScoreResult{ID: "s1", UserID: "u1", GameID: "memory-pairs", Date: "2026-09-01", Score: 150, CreatedAt: time.Now()}

	recorded, err := m.RecordScore(ctx, r)
	if err != nil || !recorded {
		t.Fatalf("first record: %v %v", recorded, err)
	}
	r.ID, r.Score = "s2", 999
	recorded, err = m.RecordScore(ctx, r)
	if err != nil || recorded {
		t.Fatalf("duplicate must be ignored: %v %v", recorded, err)
	}

	played, err := m.PlayedGames(ctx, "u1", "2026-09-01")
	if err != nil || !played["memory-pairs"] || len(played) != 1 {
		t.Fatalf("PlayedGames: %v %v", played, err)
	}
	if played, _ := m.PlayedGames(ctx, "u1", "2026-09-02"); len(played) != 0 {
		t.Fatal("played set must be scoped to the date")
	}
}

func TestMemoryLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Now()
	seed := []ScoreResult{
		{ID: "a", UserID: "u1", GameID: "g", Date: "2026-09-01", Score: 100, CreatedAt: base},
		{ID: "b", UserID: "u2", GameID: "g", Date: "2026-09-01", Score: 180, CreatedAt: base.Add(time.Second)},
		{ID: "c", UserID: "u3", GameID: "g", Date: "2026-09-01", Score: 180, CreatedAt: base},
		{ID: "d", UserID: "u4", GameID: "g", Date: "2026-08-31", Score: 200, CreatedAt: base},
	}
	for _, r := range seed {
		if _, err := m.RecordScore(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := m.Leaderboard(ctx, "2026-09-01", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (other dates excluded)", len(rows))
	}
	if rows[0].UserID != "u3" || rows[1].UserID != "u2" || rows[2].UserID != "u1" {
		t.Fatalf("ordering = %+v, want score desc then earliest first", rows)
	}
}
