package lists

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/mmcdole/reelkeep/internal/domain"
)

// SetRating stores value as the rating for id, replacing any previous rating,
// and mirrors it to the remote account in the background. Values are rounded
// to one decimal and must lie within domain.MinRating..domain.MaxRating.
func (s *Service) SetRating(ctx context.Context, id int64, value float64) error {
	if math.IsNaN(value) || value < domain.MinRating || value > domain.MaxRating {
		return fmt.Errorf("%w: %v (want %.1f-%.1f)", domain.ErrInvalidRating, value, domain.MinRating, domain.MaxRating)
	}
	value = math.Round(value*10) / 10

	ratings, err := s.readRatings(ctx)
	if err != nil {
		return err
	}
	ratings[id] = value
	if err := s.writeJSON(ctx, KeyRatings, ratings); err != nil {
		s.logger.Error("failed to save ratings", "error", err, "movieID", id)
		return err
	}

	s.logger.Debug("rated movie", "movieID", id, "rating", value)
	s.mirror(ctx, "set_rating", id, func(ctx context.Context) error {
		return s.remote.SetRating(ctx, id, value)
	})
	return nil
}

// GetRating returns the local rating for id. A stored rating of exactly 0 is
// reported as absent.
func (s *Service) GetRating(ctx context.Context, id int64) (float64, bool) {
	ratings, err := s.readRatings(ctx)
	if err != nil {
		s.logger.Warn("failed to read ratings", "error", err)
		return 0, false
	}
	value := ratings[id]
	if value == 0 {
		return 0, false
	}
	return value, true
}

// RemoveRating deletes the local rating for id. Nothing is sent to the remote
// account.
func (s *Service) RemoveRating(ctx context.Context, id int64) error {
	ratings, err := s.readRatings(ctx)
	if err != nil {
		return err
	}
	if _, ok := ratings[id]; !ok {
		return nil
	}

	delete(ratings, id)
	if err := s.writeJSON(ctx, KeyRatings, ratings); err != nil {
		s.logger.Error("failed to save ratings", "error", err, "movieID", id)
		return err
	}
	s.logger.Debug("removed rating", "movieID", id)
	return nil
}

// Ratings returns a copy of every stored rating
func (s *Service) Ratings(ctx context.Context) map[int64]float64 {
	ratings, err := s.readRatings(ctx)
	if err != nil {
		s.logger.Warn("failed to read ratings", "error", err)
		return map[int64]float64{}
	}
	return maps.Clone(ratings)
}
