package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"
)

// DefaultSearchLimit is applied when the caller passes limit <= 0.
const DefaultSearchLimit = 10

// MaxSearchLimit caps caller-supplied limits.
const MaxSearchLimit = 50

// Search returns ranked autocomplete suggestions for the query.
// A candidate matches when its code starts with the uppercased query or its
// name contains the query case-insensitively. The scan stops once limit raw
// candidates are collected, so on large directories the result is a
// first-limit-matches approximation rather than a global top-limit — an
// accepted trade-off for scan cost.
//
// Ranking is stable and three-level: exact code match first, then code-prefix
// matches, then name-only matches, with a lexicographic code tie-break.
func (d *Directory) Search(ctx context.Context, query string, limit int) ([]domain.AirportSuggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.AirportSuggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	upperQ := strings.ToUpper(query)
	lowerQ := strings.ToLower(query)

	rows, err := d.store.GetRows(ctx, rowstore.SheetAirports)
	if err != nil {
		return nil, fmt.Errorf("directory.Search: %w", err)
	}

	type candidate struct {
		airport domain.Airport
		rank    int // 0 exact code, 1 code prefix, 2 name only
	}
	var candidates []candidate
	for i := 1; i < len(rows) && len(candidates) < limit; i++ {
		a, err := parseAirportRow(rows[i])
		if err != nil {
			continue // malformed row; skip rather than fail the whole search
		}
		codeHit := strings.HasPrefix(a.Code, upperQ)
		nameHit := strings.Contains(strings.ToLower(a.Name), lowerQ)
		if !codeHit && !nameHit {
			continue
		}
		rank := 2
		switch {
		case a.Code == upperQ:
			rank = 0
		case codeHit:
			rank = 1
		}
		candidates = append(candidates, candidate{airport: a, rank: rank})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].airport.Code < candidates[j].airport.Code
	})

	out := make([]domain.AirportSuggestion, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.AirportSuggestion{
			Code: c.airport.Code,
			Name: c.airport.Name,
			City: cityFromName(c.airport.Name),
			Lat:  c.airport.Lat,
			Lng:  c.airport.Lng,
		})
	}
	return out, nil
}

// cityFromName derives a display city: the text before the first comma of
// the airport name, or the whole name when there is no comma.
func cityFromName(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}
