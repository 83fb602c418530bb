// internal/dailygame/coordinator.go
//
// At-most-once score submission for one completed session.
//
// State machine over {idle, in-flight, done}:
//   - done (success latched): every further call is a no-op,
//   - in-flight: concurrent callers wait for the same attempt instead
//     of issuing a second network call,
//   - idle: eligibility is checked, then a single submission runs.
//
// An ineligible context (no match, already played, unknown
// played-state) latches success with no network call: there is
// nothing to submit. A failed submission leaves the coordinator
// retryable, so the next user action (closing the surface, asking for
// more games) attempts the same submission again. Failures never
// propagate to callers; they surface only through the notification
// channel.

package dailygame

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/game"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/suggest"
)

// Coordinator owns the submission state for one session.
type Coordinator struct {
	client   suggest.Client
	maxScore int
	events   broadcaster

	mu       sync.Mutex
	success  bool
	inflight chan struct{}
	gen      uint64 // bumped by Reset so stale attempts cannot latch state
}

// NewCoordinator builds a coordinator submitting through client.
// maxScore <= 0 uses the shared default ceiling.
func NewCoordinator(client suggest.Client, maxScore int) *Coordinator {
	if maxScore <= 0 {
		maxScore = game.DefaultMaxScore
	}
	return &Coordinator{client: client, maxScore: maxScore}
}

// Subscribe registers an observer for submission notifications.
func (c *Coordinator) Subscribe(o Observer) { c.events.subscribe(o) }

// Done reports whether the submission is settled (sent successfully
// or determined unnecessary).
func (c *Coordinator) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success
}

// Reset prepares the coordinator for a fresh completion record. Any
// attempt still in flight is orphaned: its result is ignored rather
// than applied to the new session's state.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success = false
	c.inflight = nil
	c.gen++
}

// SubmitIfNeeded submits the score for the resolved daily game at
// most once. It never returns an error: outcomes are reported through
// the notification channel, and a failure leaves the coordinator
// ready to retry.
func (c *Coordinator) SubmitIfNeeded(ctx context.Context, res Resolved, rawScore float64) {
	c.mu.Lock()
	if c.success {
		c.mu.Unlock()
		return
	}
	if c.inflight != nil {
		done := c.inflight
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return
	}
	if !res.Eligible() {
		// Nothing to submit; settle permanently without a call.
		c.success = true
		c.mu.Unlock()
		return
	}
	done := make(chan struct{})
	c.inflight = done
	gen := c.gen
	c.mu.Unlock()

	score := game.ClampScore(rawScore, c.maxScore)
	err := c.client.SubmitScore(ctx, res.GameID, score)

	c.mu.Lock()
	if c.gen == gen {
		c.inflight = nil
		if err == nil {
			c.success = true
		}
	}
	stale := c.gen != gen
	c.mu.Unlock()
	close(done)

	if stale {
		// The session was reset mid-flight; drop the result quietly.
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", res.GameID).Int("score", score).
			Msg("score submission failed, will retry on next action")
	}
	c.events.emit(Notification{
		GameID:  res.GameID,
		Score:   score,
		Success: err == nil,
		Err:     err,
	})
}
