package search

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/reelkeep/internal/domain"
)

// noMatch marks an item whose title does not match the query at all
const noMatch = -1

// RankByTitle reorders items by how well their title matches query.
// Items that match come first, best match first; the rest follow in their
// original order. The input slice is not modified.
func RankByTitle(query string, items []domain.CatalogItem) []domain.CatalogItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(items) == 0 {
		return slices.Clone(items)
	}

	type rankedItem struct {
		item  domain.CatalogItem
		score int
	}

	ranked := make([]rankedItem, len(items))
	for i, item := range items {
		ranked[i] = rankedItem{item: item, score: matchScore(strings.ToLower(item.Title), query)}
	}

	// Stable so equal scores keep catalog order
	slices.SortStableFunc(ranked, func(a, b rankedItem) int {
		switch {
		case a.score == b.score:
			return 0
		case a.score == noMatch:
			return 1
		case b.score == noMatch:
			return -1
		default:
			return a.score - b.score
		}
	})

	out := make([]domain.CatalogItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}

// matchScore scores title against query. Lower is better; noMatch when the
// query characters do not appear in order in the title.
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	case fuzzy.MatchNormalizedFold(query, title):
		return 100 + fuzzy.LevenshteinDistance(query, title)
	default:
		return noMatch
	}
}
