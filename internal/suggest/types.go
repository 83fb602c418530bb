// internal/suggest/types.go
//
// Boundary types for the daily-suggestions service. The payload shape
// is loose on the server side: gameId may be a bare identifier or an
// expanded object, optional fields come and go, and the envelope
// nesting is not guaranteed. All of that tolerance lives here, at the
// boundary, so the rest of the module only ever sees fully defaulted
// values.

package suggest

import "encoding/json"

// Identity is the game identity attached to a suggestion entry.
// On the wire it is either a scalar id or an expanded object:
//
//	"gameId": "66f0a1..."
//	"gameId": {"_id": "66f0a1...", "url": "/games/foo", "name": "Foo", ...}
type Identity struct {
	ID        string `json:"_id"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Name      string `json:"name"`
	Category  string `json:"category"`
}

// UnmarshalJSON accepts a scalar (string or number) or the expanded
// object form. Missing or null input leaves the identity zero; it
// never returns an error for shape mismatches the server is known to
// produce.
func (id *Identity) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*id = Identity{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = Identity{ID: s}
		return nil
	case '{':
		type alias Identity
		var a alias
		if err := json.Unmarshal(b, &a); err != nil {
			return err
		}
		*id = Identity(a)
		return nil
	default:
		// Numeric id.
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*id = Identity{ID: n.String()}
		return nil
	}
}

// MarshalJSON keeps the expanded object form on the way out.
func (id Identity) MarshalJSON() ([]byte, error) {
	type alias Identity
	return json.Marshal(alias(id))
}

// Entry is one suggested game for today.
type Entry struct {
	GameID     Identity `json:"gameId"`
	URL        string   `json:"url"`
	Difficulty string   `json:"difficulty"`
	IsPlayed   bool     `json:"isPlayed"`
}

// Route returns the canonical path to match against: the entry-level
// url when present, otherwise the one embedded in the identity.
func (e Entry) Route() string {
	if e.URL != "" {
		return e.URL
	}
	return e.GameID.URL
}

// Set is today's ordered suggestion list.
type Set []Entry

// Unplayed returns the entries the user has not completed today,
// preserving order. Used by the completion surface to offer
// alternatives.
func (s Set) Unplayed() Set {
	out := make(Set, 0, len(s))
	for _, e := range s {
		if !e.IsPlayed {
			out = append(out, e)
		}
	}
	return out
}

// AllPlayed reports whether the set is non-empty and fully completed.
func (s Set) AllPlayed() bool {
	return len(s) > 0 && len(s.Unplayed()) == 0
}

// Envelope mirrors the service response shape
// {"data":{"suggestion":{"games":[...]}}}. Pointer nesting lets any
// missing level default to an empty set instead of failing decode.
type Envelope struct {
	Data *struct {
		Suggestion *struct {
			Games []Entry `json:"games"`
		} `json:"suggestion"`
	} `json:"data"`
}

// Games extracts the entry list, defaulting to empty on any missing
// nesting level.
func (ev Envelope) Games() Set {
	if ev.Data == nil || ev.Data.Suggestion == nil {
		return Set{}
	}
	if ev.Data.Suggestion.Games == nil {
		return Set{}
	}
	return Set(ev.Data.Suggestion.Games)
}
