// internal/game/session.go
//
// Phase state machine for a single play session. Engines own the
// per-game rules; the Session owns what is common to all of them:
// phase transitions, the play clock, the single-active-timer rule,
// and production of the CompletionRecord at game over.
//
// Phase graph:
//
//	Menu → Countdown → (Study →) Playing → GameOver
//
// Reset returns to Menu from any phase and invalidates the record,
// so a restarted game gets a fresh daily-challenge resolution.

package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/difficulty"
)

// Phase is a session lifecycle stage.
type Phase int

const (
	Menu Phase = iota
	Countdown
	Study
	Playing
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Menu:
		return "menu"
	case Countdown:
		return "countdown"
	case Study:
		return "study"
	case Playing:
		return "playing"
	case GameOver:
		return "gameover"
	}
	return "unknown"
}

// ErrLevelForced is returned when the user tries to change difficulty
// on a session locked to a daily-challenge variant.
var ErrLevelForced = errors.New("difficulty is locked for the daily challenge")

// Session drives one play-through of one game.
type Session struct {
	mu        sync.Mutex
	id        string
	phase     Phase
	level     difficulty.Level
	forced    bool
	maxScore  int
	timeLimit time.Duration
	startedAt time.Time
	now       func() time.Time
	timer     *time.Timer
	record    *CompletionRecord
	onFinish  func(CompletionRecord)
}

// SessionOption configures a new Session.
type SessionOption func(*Session)

// WithClock injects a clock, used by tests for deterministic elapsed
// times.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithMaxScore overrides the score ceiling (default 200).
func WithMaxScore(max int) SessionOption {
	return func(s *Session) { s.maxScore = max }
}

// OnFinish registers a callback invoked once when the session reaches
// GameOver.
func OnFinish(fn func(CompletionRecord)) SessionOption {
	return func(s *Session) { s.onFinish = fn }
}

// NewSession creates a session in the Menu phase at the given level.
func NewSession(level difficulty.Level, timeLimit time.Duration, opts ...SessionOption) *Session {
	s := &Session{
		id:        uuid.NewString(),
		phase:     Menu,
		level:     level,
		maxScore:  DefaultMaxScore,
		timeLimit: timeLimit,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Level returns the active difficulty level.
func (s *Session) Level() difficulty.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// LevelForced reports whether the difficulty selector is locked.
func (s *Session) LevelForced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forced
}

// ForceLevel pins the session to a daily-challenge variant. Only
// valid in the Menu phase, before play starts.
func (s *Session) ForceLevel(level difficulty.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Menu {
		return fmt.Errorf("cannot force level in phase %s", s.phase)
	}
	s.level = level
	s.forced = true
	return nil
}

// SelectLevel applies a user difficulty choice. Rejected when the
// session is locked to a daily variant.
func (s *Session) SelectLevel(level difficulty.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forced {
		return ErrLevelForced
	}
	if s.phase != Menu {
		return fmt.Errorf("cannot change level in phase %s", s.phase)
	}
	s.level = level
	return nil
}

// Begin moves Menu → Countdown.
func (s *Session) Begin() error { return s.transition(Menu, Countdown) }

// EnterStudy moves Countdown → Study (memory games that show the
// board before play).
func (s *Session) EnterStudy() error { return s.transition(Countdown, Study) }

// Play starts active play from Countdown or Study and stamps the
// session start time.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Countdown && s.phase != Study {
		return fmt.Errorf("cannot play from phase %s", s.phase)
	}
	s.phase = Playing
	s.startedAt = s.now()
	return nil
}

func (s *Session) transition(from, to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != from {
		return fmt.Errorf("cannot enter %s from phase %s", to, s.phase)
	}
	s.phase = to
	return nil
}

// ScheduleTimeout arms the session timer. Any previously armed timer
// is stopped first; at most one is ever active.
func (s *Session) ScheduleTimeout(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

// Finish ends play and produces the completion record. The raw score
// is clamped to [0, maxScore]; elapsed time is capped at the session
// time limit. Calling Finish outside of Playing is a no-op returning
// the existing record when there is one.
func (s *Session) Finish(rawScore float64, victory bool) CompletionRecord {
	s.mu.Lock()
	if s.phase == GameOver && s.record != nil {
		rec := *s.record
		s.mu.Unlock()
		return rec
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	elapsed := time.Duration(0)
	if !s.startedAt.IsZero() {
		elapsed = s.now().Sub(s.startedAt)
	}
	if s.timeLimit > 0 && elapsed > s.timeLimit {
		elapsed = s.timeLimit
	}
	rec := CompletionRecord{
		Score:       ClampScore(rawScore, s.maxScore),
		IsVictory:   victory,
		Difficulty:  string(s.level),
		TimeElapsed: elapsed,
	}
	s.phase = GameOver
	s.record = &rec
	cb := s.onFinish
	s.mu.Unlock()

	if cb != nil {
		cb(rec)
	}
	return rec
}

// Record returns the completion record, if the session has finished.
func (s *Session) Record() (CompletionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return CompletionRecord{}, false
	}
	return *s.record, true
}

// Reset returns the session to the Menu phase, dropping the record,
// the forced-level lock, and any pending timer. Daily-challenge
// context cached for the old run must be re-resolved after this.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.phase = Menu
	s.record = nil
	s.forced = false
	s.startedAt = time.Time{}
}
