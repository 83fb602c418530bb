// internal/dailygame/resolver.go
//
// Decides whether the running session is today's daily challenge.
// Fetches the suggestion list, normalizes the current route against
// each entry's URL, takes the first match, and maps the entry's
// difficulty label onto the game's variant table.
//
// Failure to fetch is recoverable: callers get a neutral context plus
// ErrSuggestionsUnavailable and the game stays fully playable without
// daily features.

package dailygame

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/difficulty"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/pathmatch"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/suggest"
)

// ErrSuggestionsUnavailable flags a suggestion fetch that failed.
// The accompanying Resolved value is still usable (neutral context);
// the UI may show a short inline notice.
var ErrSuggestionsUnavailable = errors.New("unable to load daily suggestions")

// Resolved is the daily-challenge context for one session.
type Resolved struct {
	// IsDaily is true when the current route is today's suggestion
	// AND its difficulty label mapped to a known variant. It gates
	// the forced-difficulty UI, not submission eligibility.
	IsDaily bool

	// GameID is the matched game's identity for submission, empty
	// when the current route is not in today's list.
	GameID string

	// IsPlayed is the server's played-state for the matched entry;
	// nil when unknown (no match or no fetch).
	IsPlayed *bool

	// Forced is the variant the session must start in when IsDaily.
	Forced *difficulty.Level

	// Alternatives are today's unplayed suggestions, for the
	// completion surface to offer next.
	Alternatives []suggest.Entry

	// AllPlayed is true when today's list is non-empty and fully
	// completed.
	AllPlayed bool
}

// Eligible reports whether a submission should be attempted: the
// session matched a daily entry and the server says it has not been
// played yet. Unknown played-state is not eligible.
func (r Resolved) Eligible() bool {
	return r.GameID != "" && r.IsPlayed != nil && !*r.IsPlayed
}

// Resolver derives Resolved contexts from the suggestion service.
type Resolver struct {
	client suggest.Client
	table  difficulty.Table
}

// NewResolver builds a resolver over the given client and per-game
// difficulty table. A nil table uses the shared default.
func NewResolver(client suggest.Client, table difficulty.Table) *Resolver {
	if table == nil {
		table = difficulty.DefaultTable()
	}
	return &Resolver{client: client, table: table}
}

// Resolve computes the daily context for currentPath. Idempotent and
// safe to call repeatedly; callers re-resolve after a submission to
// pick up the refreshed played-state.
func (r *Resolver) Resolve(ctx context.Context, currentPath string) (Resolved, error) {
	games, err := r.client.Suggestions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("daily suggestions unavailable")
		return Resolved{}, ErrSuggestionsUnavailable
	}

	res := Resolved{
		Alternatives: games.Unplayed(),
		AllPlayed:    games.AllPlayed(),
	}

	want := pathmatch.Normalize(currentPath)
	for _, e := range games {
		if pathmatch.Normalize(e.Route()) != want {
			continue
		}
		// First match wins; duplicate URLs in one set are a data
		// quirk we deliberately do not arbitrate.
		played := e.IsPlayed
		res.GameID = e.GameID.ID
		res.IsPlayed = &played
		if lvl, ok := difficulty.Map(e.Difficulty, r.table); ok {
			res.IsDaily = true
			res.Forced = &lvl
		} else {
			// A session cannot start in an unknown variant, so the
			// game is matched for submission but not flagged daily.
			log.Debug().Str("difficulty", e.Difficulty).Str("gameId", e.GameID.ID).
				Msg("unmapped difficulty label, not forcing daily variant")
		}
		break
	}
	return res, nil
}
