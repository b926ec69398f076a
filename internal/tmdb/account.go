package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmcdole/reelkeep/internal/domain"
)

// maxPages bounds pagination; TMDB refuses pages above 500
const maxPages = 500

func (c *Client) sessionQuery() (url.Values, error) {
	if !c.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	query := url.Values{}
	query.Set("session_id", c.sessionID)
	return query, nil
}

func (c *Client) accountPath(suffix string) string {
	return fmt.Sprintf("/account/%d%s", c.accountID, suffix)
}

func accountListPage[T any](ctx context.Context, c *Client, suffix string, page int) (PageResponse[T], error) {
	query, err := c.sessionQuery()
	if err != nil {
		return PageResponse[T]{}, err
	}
	if page < 1 {
		page = 1
	}
	query.Set("page", fmt.Sprint(page))
	query.Set("sort_by", "created_at.asc")

	var resp PageResponse[T]
	if err := c.getJSON(ctx, c.accountPath(suffix), query, &resp); err != nil {
		return PageResponse[T]{}, err
	}
	return resp, nil
}

// FavoriteMovies returns one page of the account's favorites
func (c *Client) FavoriteMovies(ctx context.Context, page int) (domain.Page[domain.CatalogItem], error) {
	resp, err := accountListPage[Movie](ctx, c, "/favorite/movies", page)
	if err != nil {
		return domain.Page[domain.CatalogItem]{}, err
	}
	return mapPage(resp, MapMovie), nil
}

// WatchlistMovies returns one page of the account's watchlist
func (c *Client) WatchlistMovies(ctx context.Context, page int) (domain.Page[domain.CatalogItem], error) {
	resp, err := accountListPage[Movie](ctx, c, "/watchlist/movies", page)
	if err != nil {
		return domain.Page[domain.CatalogItem]{}, err
	}
	return mapPage(resp, MapMovie), nil
}

// RatedMovies returns one page of the account's rated movies
func (c *Client) RatedMovies(ctx context.Context, page int) (domain.Page[domain.RatedItem], error) {
	resp, err := accountListPage[RatedMovie](ctx, c, "/rated/movies", page)
	if err != nil {
		return domain.Page[domain.RatedItem]{}, err
	}
	return mapPage(resp, MapRatedMovie), nil
}

// AllFavorites returns every favorited movie
func (c *Client) AllFavorites(ctx context.Context) ([]domain.CatalogItem, error) {
	return fetchAllPages(ctx, c.FavoriteMovies)
}

// AllWatchlist returns every watchlisted movie
func (c *Client) AllWatchlist(ctx context.Context) ([]domain.CatalogItem, error) {
	return fetchAllPages(ctx, c.WatchlistMovies)
}

// AllRated returns every rated movie with its rating
func (c *Client) AllRated(ctx context.Context) ([]domain.RatedItem, error) {
	return fetchAllPages(ctx, c.RatedMovies)
}

// SetFavorite marks or unmarks a movie as favorite on the account
func (c *Client) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	return c.mark(ctx, "/favorite", markRequest{MediaType: "movie", MediaID: id, Favorite: &favorite})
}

// SetWatchlist adds or removes a movie from the account watchlist
func (c *Client) SetWatchlist(ctx context.Context, id int64, watchlist bool) error {
	return c.mark(ctx, "/watchlist", markRequest{MediaType: "movie", MediaID: id, Watchlist: &watchlist})
}

// SetRating rates a movie on the account
func (c *Client) SetRating(ctx context.Context, id int64, value float64) error {
	query, err := c.sessionQuery()
	if err != nil {
		return err
	}
	var resp StatusResponse
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/movie/%d/rating", id), query, ratingRequest{Value: value}, &resp); err != nil {
		return err
	}
	return checkStatus(resp)
}

func (c *Client) mark(ctx context.Context, suffix string, body markRequest) error {
	query, err := c.sessionQuery()
	if err != nil {
		return err
	}
	var resp StatusResponse
	if err := c.sendJSON(ctx, http.MethodPost, c.accountPath(suffix), query, body, &resp); err != nil {
		return err
	}
	return checkStatus(resp)
}

// checkStatus rejects 2xx responses that still report success=false
func checkStatus(resp StatusResponse) error {
	if !resp.Success && resp.StatusCode != 0 {
		return fmt.Errorf("%w: %s (code %d)", domain.ErrRemoteUnavailable, resp.StatusMessage, resp.StatusCode)
	}
	return nil
}

// fetchAllPages is a generic pagination helper for page-numbered endpoints.
func fetchAllPages[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page int) (domain.Page[T], error),
) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		all = append(all, p.Results...)

		if !p.HasNext() || len(p.Results) == 0 {
			break
		}
	}
	return all, nil
}
