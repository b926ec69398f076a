package domain

import (
	"context"
)

// DiscoverCategory selects one of the catalog's curated movie lists
type DiscoverCategory string

const (
	CategoryPopular    DiscoverCategory = "popular"
	CategoryTopRated   DiscoverCategory = "top_rated"
	CategoryNowPlaying DiscoverCategory = "now_playing"
	CategoryUpcoming   DiscoverCategory = "upcoming"
	CategoryTrending   DiscoverCategory = "trending"
)

// CatalogRepository provides read access to the movie catalog
type CatalogRepository interface {
	// Discover returns one page of a curated list
	Discover(ctx context.Context, category DiscoverCategory, page int) (Page[CatalogItem], error)

	// Search returns one page of movies matching query
	Search(ctx context.Context, query string, page int) (Page[CatalogItem], error)

	// Movie returns full details for a movie
	Movie(ctx context.Context, id int64) (*MovieDetails, error)

	// Credits returns cast and crew for a movie
	Credits(ctx context.Context, id int64) (*Credits, error)

	// Reviews returns one page of reviews for a movie
	Reviews(ctx context.Context, id int64, page int) (Page[Review], error)

	// Videos returns trailers and clips for a movie
	Videos(ctx context.Context, id int64) ([]Video, error)

	// Genres returns the movie genre list
	Genres(ctx context.Context) ([]Genre, error)
}

// AccountRepository reads and mutates the per-user account lists on the catalog.
// Every method returns ErrNotAuthenticated when no session is configured.
type AccountRepository interface {
	// AllFavorites returns every favorited movie (handles pagination internally)
	AllFavorites(ctx context.Context) ([]CatalogItem, error)

	// AllWatchlist returns every watchlisted movie (handles pagination internally)
	AllWatchlist(ctx context.Context) ([]CatalogItem, error)

	// AllRated returns every rated movie with its rating (handles pagination internally)
	AllRated(ctx context.Context) ([]RatedItem, error)

	SetFavorite(ctx context.Context, id int64, favorite bool) error
	SetWatchlist(ctx context.Context, id int64, watchlist bool) error
	SetRating(ctx context.Context, id int64, value float64) error
}

// Session holds the credentials needed for account operations
type Session struct {
	SessionID string
	AccountID int64
	Username  string
}

// AuthFlow establishes an account session with the catalog.
type AuthFlow interface {
	Run(ctx context.Context) (*Session, error)
}
