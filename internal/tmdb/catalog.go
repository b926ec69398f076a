package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/reelkeep/internal/domain"
)

// TrendingWindow selects the trending time window
type TrendingWindow string

const (
	TrendingDay  TrendingWindow = "day"
	TrendingWeek TrendingWindow = "week"
)

func pageQuery(page int) url.Values {
	query := url.Values{}
	if page < 1 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))
	return query
}

func (c *Client) moviePage(ctx context.Context, path string, query url.Values) (domain.Page[domain.CatalogItem], error) {
	var resp PageResponse[Movie]
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return domain.Page[domain.CatalogItem]{}, err
	}
	return mapPage(resp, MapMovie), nil
}

// Popular returns one page of popular movies
func (c *Client) Popular(ctx context.Context, page int) (domain.Page[domain.CatalogItem], error) {
	return c.moviePage(ctx, "/movie/popular", pageQuery(page))
}

// TopRated returns one page of top-rated movies
func (c *Client) TopRated(ctx context.Context, page int) (domain.Page[domain.CatalogItem], error) {
	return c.moviePage(ctx, "/movie/top_rated", pageQuery(page))
}

// NowPlaying returns one page of movies currently in theatres
func (c *Client) NowPlaying(ctx context.Context, page int) (domain.Page[domain.CatalogItem], error) {
	return c.moviePage(ctx, "/movie/now_playing", pageQuery(page))
}

// Upcoming returns one page of upcoming releases
func (c *Client) Upcoming(ctx context.Context, page int) (domain.Page[domain.CatalogItem], error) {
	return c.moviePage(ctx, "/movie/upcoming", pageQuery(page))
}

// Trending returns one page of trending movies for the given window
func (c *Client) Trending(ctx context.Context, window TrendingWindow, page int) (domain.Page[domain.CatalogItem], error) {
	if window != TrendingDay && window != TrendingWeek {
		window = TrendingWeek
	}
	return c.moviePage(ctx, "/trending/movie/"+string(window), pageQuery(page))
}

// Discover dispatches a curated list by category
func (c *Client) Discover(ctx context.Context, category domain.DiscoverCategory, page int) (domain.Page[domain.CatalogItem], error) {
	switch category {
	case domain.CategoryPopular:
		return c.Popular(ctx, page)
	case domain.CategoryTopRated:
		return c.TopRated(ctx, page)
	case domain.CategoryNowPlaying:
		return c.NowPlaying(ctx, page)
	case domain.CategoryUpcoming:
		return c.Upcoming(ctx, page)
	case domain.CategoryTrending:
		return c.Trending(ctx, TrendingWeek, page)
	default:
		return domain.Page[domain.CatalogItem]{}, fmt.Errorf("unknown discover category: %s", category)
	}
}

// Search returns one page of movies matching query
func (c *Client) Search(ctx context.Context, query string, page int) (domain.Page[domain.CatalogItem], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Page[domain.CatalogItem]{Number: 1}, nil
	}
	params := pageQuery(page)
	params.Set("query", query)
	params.Set("include_adult", "false")
	return c.moviePage(ctx, "/search/movie", params)
}

// Movie returns full details for a movie
func (c *Client) Movie(ctx context.Context, id int64) (*domain.MovieDetails, error) {
	var resp MovieDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return MapMovieDetail(resp), nil
}

// Credits returns cast and crew for a movie
func (c *Client) Credits(ctx context.Context, id int64) (*domain.Credits, error) {
	var resp CreditsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &resp); err != nil {
		return nil, err
	}
	return MapCredits(resp), nil
}

// Reviews returns one page of reviews for a movie
func (c *Client) Reviews(ctx context.Context, id int64, page int) (domain.Page[domain.Review], error) {
	var resp PageResponse[Review]
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/reviews", id), pageQuery(page), &resp); err != nil {
		return domain.Page[domain.Review]{}, err
	}
	return mapPage(resp, MapReview), nil
}

// Videos returns trailers and clips for a movie
func (c *Client) Videos(ctx context.Context, id int64) ([]domain.Video, error) {
	var resp VideosResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &resp); err != nil {
		return nil, err
	}
	return MapVideos(resp.Results), nil
}

// Genres returns the movie genre list
func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	var resp GenresResponse
	if err := c.getJSON(ctx, "/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}
	return MapGenres(resp.Genres), nil
}
