package tmdb

import (
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
)

// MapMovie converts a TMDB movie summary to a domain.CatalogItem
func MapMovie(m Movie) domain.CatalogItem {
	return domain.CatalogItem{
		ID:               m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		OriginalLanguage: m.OriginalLanguage,
		Overview:         m.Overview,
		ReleaseDate:      m.ReleaseDate,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		PosterPath:       deref(m.PosterPath),
		BackdropPath:     deref(m.BackdropPath),
		GenreIDs:         m.GenreIDs,
		Adult:            m.Adult,
	}
}

// MapMovies converts a slice of TMDB movies
func MapMovies(movies []Movie) []domain.CatalogItem {
	items := make([]domain.CatalogItem, len(movies))
	for i, m := range movies {
		items[i] = MapMovie(m)
	}
	return items
}

// MapRatedMovie converts a rated movie, keeping its rating
func MapRatedMovie(m RatedMovie) domain.RatedItem {
	return domain.RatedItem{Item: MapMovie(m.Movie), Rating: m.Rating}
}

// MapMovieDetail converts the detail response
func MapMovieDetail(d MovieDetail) *domain.MovieDetails {
	item := MapMovie(d.Movie)
	genres := make([]domain.Genre, len(d.Genres))
	for i, g := range d.Genres {
		genres[i] = domain.Genre{ID: g.ID, Name: g.Name}
		item.GenreIDs = append(item.GenreIDs, g.ID)
	}
	return &domain.MovieDetails{
		CatalogItem: item,
		Tagline:     d.Tagline,
		Runtime:     d.Runtime,
		Status:      d.Status,
		Budget:      d.Budget,
		Revenue:     d.Revenue,
		Homepage:    d.Homepage,
		IMDbID:      d.IMDbID,
		Genres:      genres,
	}
}

// MapGenres converts the genre list
func MapGenres(genres []Genre) []domain.Genre {
	out := make([]domain.Genre, len(genres))
	for i, g := range genres {
		out[i] = domain.Genre{ID: g.ID, Name: g.Name}
	}
	return out
}

// MapCredits converts cast and crew
func MapCredits(resp CreditsResponse) *domain.Credits {
	credits := &domain.Credits{
		MovieID: resp.ID,
		Cast:    make([]domain.CastMember, len(resp.Cast)),
		Crew:    make([]domain.CrewMember, len(resp.Crew)),
	}
	for i, c := range resp.Cast {
		credits.Cast[i] = domain.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			Order:       c.Order,
			ProfilePath: deref(c.ProfilePath),
		}
	}
	for i, c := range resp.Crew {
		credits.Crew[i] = domain.CrewMember{
			ID:          c.ID,
			Name:        c.Name,
			Job:         c.Job,
			Department:  c.Department,
			ProfilePath: deref(c.ProfilePath),
		}
	}
	return credits
}

// MapReview converts a review. Unparseable timestamps become the zero time.
func MapReview(r Review) domain.Review {
	review := domain.Review{
		ID:      r.ID,
		Author:  r.Author,
		Content: r.Content,
		URL:     r.URL,
	}
	if r.AuthorDetails.Rating != nil {
		review.Rating = *r.AuthorDetails.Rating
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		review.CreatedAt = t
	}
	return review
}

// MapVideos converts videos
func MapVideos(videos []Video) []domain.Video {
	out := make([]domain.Video, len(videos))
	for i, v := range videos {
		out[i] = domain.Video{
			ID:       v.ID,
			Key:      v.Key,
			Name:     v.Name,
			Site:     v.Site,
			Type:     v.Type,
			Official: v.Official,
		}
	}
	return out
}

// mapPage converts a page envelope using fn for each result
func mapPage[S, T any](resp PageResponse[S], fn func(S) T) domain.Page[T] {
	results := make([]T, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = fn(r)
	}
	return domain.Page[T]{
		Number:       resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Results:      results,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
