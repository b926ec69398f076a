package browse

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/mmcdole/reelkeep/internal/search"
	"github.com/sourcegraph/conc"
)

// Lists is the subset of the list service browse needs
type Lists interface {
	Annotate(ctx context.Context, items []domain.CatalogItem) []domain.CatalogItem
	GetAll(ctx context.Context, kind domain.ListKind) []domain.CatalogItem
	GetRating(ctx context.Context, id int64) (float64, bool)
}

// Results is a page of catalog items. Local is set when the remote search
// failed and the page was built from saved items instead.
type Results struct {
	domain.Page[domain.CatalogItem]
	Local bool
}

// Details bundles everything shown for a single movie
type Details struct {
	Movie   *domain.MovieDetails
	Credits *domain.Credits // nil when the credits request failed
	Videos  []domain.Video
	Rating  float64 // Local rating, 0 when unrated
}

// Service reads the catalog and marks results with local list membership.
type Service struct {
	catalog domain.CatalogRepository
	lists   Lists
	logger  *slog.Logger
}

// NewService creates a new browse service.
func NewService(catalog domain.CatalogRepository, lists Lists, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, lists: lists, logger: logger}
}

func (s *Service) Discover(ctx context.Context, category domain.DiscoverCategory, page int) (domain.Page[domain.CatalogItem], error) {
	p, err := s.catalog.Discover(ctx, category, page)
	if err != nil {
		s.logger.Error("failed to discover movies", "error", err, "category", category, "page", page)
		return domain.Page[domain.CatalogItem]{}, err
	}
	p.Results = s.lists.Annotate(ctx, p.Results)
	s.logger.Debug("discovered movies", "category", category, "page", p.Number, "count", len(p.Results))
	return p, nil
}

// Search queries the catalog and ranks the page by title relevance. When the
// catalog is unreachable it falls back to fuzzy matching over saved items.
func (s *Service) Search(ctx context.Context, query string, page int) (Results, error) {
	if strings.TrimSpace(query) == "" {
		return Results{Page: domain.Page[domain.CatalogItem]{Number: 1}}, nil
	}

	s.logger.Debug("searching", "query", query, "page", page)

	p, err := s.catalog.Search(ctx, query, page)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Results{}, ctxErr
		}
		s.logger.Warn("catalog search failed, falling back to saved items", "error", err, "query", query)
		return s.searchSaved(ctx, query), nil
	}

	p.Results = s.lists.Annotate(ctx, search.RankByTitle(query, p.Results))
	s.logger.Debug("search complete", "query", query, "results", len(p.Results))
	return Results{Page: p}, nil
}

// SearchSaved fuzzy-matches query against every saved item. Local only.
func (s *Service) SearchSaved(ctx context.Context, query string) []domain.CatalogItem {
	return s.searchSaved(ctx, query).Results
}

func (s *Service) searchSaved(ctx context.Context, query string) Results {
	var saved []domain.CatalogItem
	for _, kind := range domain.AllListKinds {
		saved = append(saved, s.lists.GetAll(ctx, kind)...)
	}

	matches := search.Items(search.FilterSaved(query, saved))
	items := s.lists.Annotate(ctx, matches)
	return Results{
		Page: domain.Page[domain.CatalogItem]{
			Number:       1,
			TotalPages:   1,
			TotalResults: len(items),
			Results:      items,
		},
		Local: true,
	}
}

// Details fetches a movie with its credits and videos. Only a failure to
// fetch the movie itself is returned; credits and videos are best effort.
func (s *Service) Details(ctx context.Context, id int64) (*Details, error) {
	var (
		movie      *domain.MovieDetails
		movieErr   error
		credits    *domain.Credits
		creditsErr error
		videos     []domain.Video
		videosErr  error
	)

	var wg conc.WaitGroup
	wg.Go(func() { movie, movieErr = s.catalog.Movie(ctx, id) })
	wg.Go(func() { credits, creditsErr = s.catalog.Credits(ctx, id) })
	wg.Go(func() { videos, videosErr = s.catalog.Videos(ctx, id) })
	wg.Wait()

	if movieErr != nil {
		if errors.Is(movieErr, domain.ErrItemNotFound) {
			s.logger.Debug("movie not found", "movieID", id)
		} else {
			s.logger.Error("failed to fetch movie", "error", movieErr, "movieID", id)
		}
		return nil, movieErr
	}
	if creditsErr != nil {
		s.logger.Warn("failed to fetch credits", "error", creditsErr, "movieID", id)
		credits = nil
	}
	if videosErr != nil {
		s.logger.Warn("failed to fetch videos", "error", videosErr, "movieID", id)
		videos = nil
	}

	annotated := s.lists.Annotate(ctx, []domain.CatalogItem{movie.CatalogItem})
	movie.CatalogItem = annotated[0]

	rating, _ := s.lists.GetRating(ctx, id)
	return &Details{Movie: movie, Credits: credits, Videos: videos, Rating: rating}, nil
}

func (s *Service) Reviews(ctx context.Context, id int64, page int) (domain.Page[domain.Review], error) {
	p, err := s.catalog.Reviews(ctx, id, page)
	if err != nil {
		s.logger.Error("failed to fetch reviews", "error", err, "movieID", id)
		return domain.Page[domain.Review]{}, err
	}
	return p, nil
}

func (s *Service) Genres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.catalog.Genres(ctx)
	if err != nil {
		s.logger.Error("failed to fetch genres", "error", err)
		return nil, err
	}
	return genres, nil
}
