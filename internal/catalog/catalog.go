// internal/catalog/catalog.go
//
// The game catalog and the deterministic daily rotation. Each date
// maps to a suggestion list (subset of the catalog, each with a
// difficulty label) via HMAC(salt, key) so every server instance
// agrees on today's games without coordination.

package catalog

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Game is one playable title.
type Game struct {
	ID        string
	URL       string
	Name      string
	Category  string
	Thumbnail string
}

var games = []Game{
	{ID: "memory-pairs", URL: "/games/memory-pairs", Name: "Memory Pairs", Category: "memory", Thumbnail: "/thumbs/memory-pairs.png"},
	{ID: "sequence-recall", URL: "/games/sequence-recall", Name: "Sequence Recall", Category: "memory", Thumbnail: "/thumbs/sequence-recall.png"},
	{ID: "reaction-rush", URL: "/games/reaction-rush", Name: "Reaction Rush", Category: "reaction", Thumbnail: "/thumbs/reaction-rush.png"},
}

// Games returns the full catalog.
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

// ByID looks a game up by identifier.
func ByID(id string) (Game, bool) {
	for _, g := range games {
		if g.ID == id {
			return g, true
		}
	}
	return Game{}, false
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// keyIndex returns a deterministic index in [0,n) for a key using
// HMAC(salt, key).
func keyIndex(key, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(key))
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// difficultyLabels are the free-text labels the service hands out.
// "medium" is kept deliberately: clients fold it onto their moderate
// tier.
var difficultyLabels = []string{"easy", "medium", "moderate", "hard"}

// DifficultyFor returns the label assigned to a game on a date.
func DifficultyFor(date, salt, gameID string) string {
	return difficultyLabels[keyIndex(date+"|"+gameID, salt, len(difficultyLabels))]
}

// Suggestion is one rotation entry: a game plus its label for the day.
type Suggestion struct {
	Game       Game
	Difficulty string
}

// SuggestionsFor returns the daily rotation: count games starting at a
// date-determined offset, each with its difficulty for the day. count
// is capped at the catalog size.
func SuggestionsFor(date, salt string, count int) []Suggestion {
	if count <= 0 || count > len(games) {
		count = len(games)
	}
	start := keyIndex(date, salt, len(games))
	out := make([]Suggestion, 0, count)
	for i := 0; i < count; i++ {
		g := games[(start+i)%len(games)]
		out = append(out, Suggestion{Game: g, Difficulty: DifficultyFor(date, salt, g.ID)})
	}
	return out
}
