package search

import (
	"testing"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titled(titles ...string) []domain.CatalogItem {
	items := make([]domain.CatalogItem, len(titles))
	for i, t := range titles {
		items[i] = domain.CatalogItem{ID: int64(i + 1), Title: t}
	}
	return items
}

func titles(items []domain.CatalogItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestFilterSaved(t *testing.T) {
	items := titled("The Matrix", "Mad Max", "The Matrix Reloaded")

	results := FilterSaved("MATRIX", items)
	require.Len(t, results, 2)
	assert.ElementsMatch(t, []string{"The Matrix", "The Matrix Reloaded"}, titles(Items(results)))
	for _, r := range results {
		assert.Len(t, r.MatchedIndexes, len("matrix"))
	}
}

func TestFilterSavedEmptyQuery(t *testing.T) {
	assert.Nil(t, FilterSaved("   ", titled("Heat")))
	assert.Nil(t, FilterSaved("heat", nil))
}

func TestIndexSkipsDuplicateIDs(t *testing.T) {
	items := []domain.CatalogItem{{ID: 1, Title: "Heat"}, {ID: 1, Title: "Heat"}, {ID: 2, Title: "Heathers"}}

	idx := NewIndex(items)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, "heathers", idx.String(1))
	assert.Len(t, idx.Filter("heat"), 2)
}

func TestRankByTitle(t *testing.T) {
	items := titled("Aliens", "Prometheus", "Alien", "Alien: Covenant", "Fantastic Four")

	ranked := RankByTitle("alien", items)
	assert.Equal(t, []string{"Alien", "Aliens", "Alien: Covenant", "Prometheus", "Fantastic Four"}, titles(ranked))
	assert.Equal(t, "Aliens", items[0].Title, "input is not reordered")
}

func TestRankByTitleFuzzy(t *testing.T) {
	items := titled("Batman Begins", "The Dark Knight", "Knight and Day")

	ranked := RankByTitle("drk knight", items)
	assert.Equal(t, "The Dark Knight", ranked[0].Title)
	assert.Len(t, ranked, 3)
}

func TestRankByTitleEmptyQueryKeepsOrder(t *testing.T) {
	items := titled("B", "A", "C")
	assert.Equal(t, []string{"B", "A", "C"}, titles(RankByTitle("", items)))
}
