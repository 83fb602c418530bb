// internal/dailygame/flow.go
//
// Orchestration for the shared end-of-game completion surface.
//
// Lifecycle per completed session:
//
//	closed → opening → ready → closing → closed
//
// Open resets the submission state (a new completion record means a
// fresh attempt even when the same game is replayed), then runs the
// strictly ordered sequence fetch → submit → refetch. Close and
// MoreGames re-attempt the submission first — covering retry after a
// prior failure — and then invoke the navigation callback; a failed
// retry never blocks navigation.

package dailygame

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/game"
)

// FlowState is the completion surface lifecycle stage.
type FlowState string

const (
	FlowClosed  FlowState = "closed"
	FlowOpening FlowState = "opening"
	FlowReady   FlowState = "ready"
	FlowClosing FlowState = "closing"
)

// Flow ties a resolver and a coordinator to one completion surface.
type Flow struct {
	resolver *Resolver
	coord    *Coordinator

	onClose     func()
	onMoreGames func()

	mu      sync.Mutex
	state   FlowState
	path    string
	record  game.CompletionRecord
	context Resolved
	fetchOK bool
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// OnClose sets the navigation callback invoked after Close.
func OnClose(fn func()) FlowOption {
	return func(f *Flow) { f.onClose = fn }
}

// OnMoreGames sets the callback invoked after MoreGames.
func OnMoreGames(fn func()) FlowOption {
	return func(f *Flow) { f.onMoreGames = fn }
}

// NewFlow builds a closed completion flow.
func NewFlow(resolver *Resolver, coord *Coordinator, opts ...FlowOption) *Flow {
	f := &Flow{resolver: resolver, coord: coord, state: FlowClosed}
	for _, o := range opts {
		o(f)
	}
	return f
}

// State returns the current lifecycle stage.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SuggestionsLoaded reports whether the last Open fetched the
// suggestion list; false drives the inline "unable to load daily
// suggestions" notice.
func (f *Flow) SuggestionsLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchOK
}

// Context returns the most recently resolved daily context.
func (f *Flow) Context() Resolved {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.context
}

// Open runs the become-visible sequence for a completed session:
// reset submission state, resolve the daily context for currentPath,
// submit if eligible, then re-resolve so the alternatives and
// played-state reflect the server's view. The returned context is the
// refreshed one. Open never fails; a fetch error yields a neutral
// context with SuggestionsLoaded reporting false.
func (f *Flow) Open(ctx context.Context, currentPath string, rec game.CompletionRecord) Resolved {
	f.mu.Lock()
	f.state = FlowOpening
	f.path = currentPath
	f.record = rec
	f.fetchOK = false
	f.mu.Unlock()

	f.coord.Reset()

	res, err := f.resolver.Resolve(ctx, currentPath)
	if err == nil {
		f.coord.SubmitIfNeeded(ctx, res, float64(rec.Score))
		// Refetch so the surface shows the updated played-state.
		if refreshed, rerr := f.resolver.Resolve(ctx, currentPath); rerr == nil {
			res = refreshed
		}
	} else if !errors.Is(err, ErrSuggestionsUnavailable) {
		log.Warn().Err(err).Msg("completion flow: resolve failed")
	}

	f.mu.Lock()
	f.state = FlowReady
	f.context = res
	f.fetchOK = err == nil
	f.mu.Unlock()
	return res
}

// Close re-attempts the submission (retry path after an earlier
// failure), transitions to closed, and invokes the close callback.
// Never blocks navigation on a failed submission.
func (f *Flow) Close(ctx context.Context) {
	f.finish(ctx, FlowClosed, f.onClose)
}

// MoreGames behaves like Close but hands control to the more-games
// navigation callback.
func (f *Flow) MoreGames(ctx context.Context) {
	f.finish(ctx, FlowClosed, f.onMoreGames)
}

func (f *Flow) finish(ctx context.Context, end FlowState, cb func()) {
	f.mu.Lock()
	f.state = FlowClosing
	res := f.context
	rec := f.record
	f.mu.Unlock()

	f.coord.SubmitIfNeeded(ctx, res, float64(rec.Score))

	f.mu.Lock()
	f.state = end
	f.mu.Unlock()

	if cb != nil {
		cb()
	}
}
