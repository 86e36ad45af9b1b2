package service

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// deriveTripID builds a trip id from the trip name and start year, e.g.
// "Summer in Japan" + 2026 → "summer-in-japan-2026". Used when the caller
// supplies no id. Names that slug to nothing (all punctuation, non-Latin)
// fall back to a random UUID so the id is never empty.
func deriveTripID(name string, year int) string {
	slug := slugify(name)
	if slug == "" {
		return uuid.NewString()
	}
	return slug + "-" + strconv.Itoa(year)
}

// slugify lowercases and hyphenates, dropping anything outside [a-z0-9-].
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
