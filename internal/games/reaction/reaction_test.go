package reaction

import (
	"testing"
	"time"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/difficulty"
)

func TestNewUnknownLevel(t *testing.T) {
	if _, err := New("nightmare"); err == nil {
		t.Fatal("unknown level must not start a run")
	}
}

func TestFasterReactionsScoreMore(t *testing.T) {
	g, err := New(difficulty.Easy)
	if err != nil {
		t.Fatal(err)
	}
	fast, _ := g.React(50 * time.Millisecond)
	slow, _ := g.React(g.Variant().Window - 50*time.Millisecond)
	if !fast.Hit || !slow.Hit {
		t.Fatalf("in-window reactions must hit: %+v %+v", fast, slow)
	}
	if fast.Points <= slow.Points {
		t.Fatalf("fast %d points vs slow %d, want fast > slow", fast.Points, slow.Points)
	}
	if slow.Points < 1 {
		t.Fatalf("window-edge hit scored %d, want at least 1", slow.Points)
	}
}

func TestLateAndEarlyReactions(t *testing.T) {
	g, _ := New(difficulty.Easy)

	late, _ := g.React(g.Variant().Window + time.Millisecond)
	if late.Hit || late.Points != 0 {
		t.Fatalf("late reaction scored: %+v", late)
	}

	early, _ := g.React(-10 * time.Millisecond)
	if !early.Early {
		t.Fatalf("premature reaction not flagged: %+v", early)
	}
	if g.Score() != -float64(g.Variant().EarlyPenalty) {
		t.Fatalf("score %v, want early penalty applied", g.Score())
	}
}

func TestRunFinishesAfterAllRounds(t *testing.T) {
	g, _ := New(difficulty.Easy)
	v := g.Variant()
	var last RoundResult
	for i := 0; i < v.Rounds; i++ {
		var err error
		last, err = g.React(100 * time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !last.Finished || !g.Finished() {
		t.Fatal("run must finish after the final round")
	}
	if !g.Won() {
		t.Fatal("all-hit run must count as a win")
	}
	if _, err := g.React(0); err != ErrFinished {
		t.Fatalf("react after finish: %v, want ErrFinished", err)
	}
}

func TestMajorityMissesLose(t *testing.T) {
	g, _ := New(difficulty.Easy)
	v := g.Variant()
	for i := 0; i < v.Rounds; i++ {
		if _, err := g.React(v.Window * 2); err != nil {
			t.Fatal(err)
		}
	}
	if g.Won() {
		t.Fatal("all-miss run must not count as a win")
	}
}
