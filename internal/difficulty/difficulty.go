// internal/difficulty/difficulty.go
//
// Translates the backend's free-text difficulty labels into the
// variant keys the game engines understand. The backend sends
// "easy" / "medium" / "moderate" / "hard" with inconsistent casing;
// engines key their variant tables by Level.
//
// Lookup tables are per-game because a few games fold "medium" into
// "moderate" while others keep a three-tier split of their own.
// An unrecognized label is reported via the ok flag, never an error:
// callers treat it as "not a daily challenge".

package difficulty

import "strings"

// Level is the internal variant key for a game's difficulty tier.
type Level string

const (
	Easy     Level = "easy"
	Moderate Level = "moderate"
	Hard     Level = "hard"
)

// Table maps lowercase server labels to a game's variant keys.
type Table map[string]Level

// DefaultTable is the mapping shared by most games: "medium" and
// "moderate" collapse onto the same tier.
func DefaultTable() Table {
	return Table{
		"easy":     Easy,
		"medium":   Moderate,
		"moderate": Moderate,
		"hard":     Hard,
	}
}

// Map resolves a server-provided label against a per-game table.
// The label is lowercased before lookup. ok is false when the label
// is empty or absent from the table.
func Map(label string, t Table) (Level, bool) {
	lvl, ok := t[strings.ToLower(strings.TrimSpace(label))]
	return lvl, ok
}
