package search

import (
	"strings"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Result is a saved item that matched a filter query
type Result struct {
	Item           domain.CatalogItem
	MatchedIndexes []int // Character positions in the title that matched (for highlighting)
	Score          int   // Higher is better
}

// Index implements sahilm/fuzzy.Source over catalog items
type Index struct {
	items       []domain.CatalogItem
	lowerTitles []string // Pre-computed lowercase titles
}

// NewIndex builds an index over items. Items with a repeated ID are skipped.
func NewIndex(items []domain.CatalogItem) *Index {
	idx := &Index{
		items:       make([]domain.CatalogItem, 0, len(items)),
		lowerTitles: make([]string, 0, len(items)),
	}
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		idx.items = append(idx.items, item)
		idx.lowerTitles = append(idx.lowerTitles, strings.ToLower(item.Title))
	}
	return idx
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.items) }

// Filter returns the items whose title fuzzily matches query, best first
func (idx *Index) Filter(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || idx.Len() == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Item:           idx.items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// FilterSaved fuzzy-matches query against the titles of items
func FilterSaved(query string, items []domain.CatalogItem) []Result {
	return NewIndex(items).Filter(query)
}

// Items extracts the matched items from results, preserving order
func Items(results []Result) []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(results))
	for i, r := range results {
		out[i] = r.Item
	}
	return out
}
