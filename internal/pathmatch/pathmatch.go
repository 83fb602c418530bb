// internal/pathmatch/pathmatch.go
//
// Canonical form for URL paths used when matching the current page
// against the daily suggestion list. Suggestion URLs come from the
// backend and page paths from the router; both may carry query
// strings, fragments, stray whitespace, or trailing slashes.
//
// Normalize is a pure, total function: any input string maps to a
// canonical path, and normalizing twice gives the same result.

package pathmatch

import "strings"

// Normalize reduces a raw path to its canonical matching form:
//   - everything from the first '?' or '#' is dropped,
//   - surrounding whitespace is trimmed,
//   - trailing '/' characters are stripped,
//   - an empty result becomes "/".
func Normalize(raw string) string {
	s := raw
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "/")
	if s == "" {
		return "/"
	}
	return s
}

// Equal reports whether two raw paths refer to the same route.
// Comparison is case-sensitive over the normalized forms.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
