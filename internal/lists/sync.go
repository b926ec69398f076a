package lists

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/sourcegraph/conc/pool"
)

// ClearAll empties every list and the rating map. Each key is attempted even
// when an earlier one fails; the failures are returned joined and nothing is
// rolled back. Sync status is kept.
func (s *Service) ClearAll(ctx context.Context) error {
	var errs []error
	for _, key := range clearableKeys {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Error("failed to clear key", "error", err, "key", key)
			errs = append(errs, fmt.Errorf("%w: clear %s: %w", domain.ErrStorage, key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("cleared all lists and ratings")
	return nil
}

// SyncStatus returns the outcome of the last reconciliation. Local only.
func (s *Service) SyncStatus(ctx context.Context) domain.SyncStatus {
	var status domain.SyncStatus
	found, err := s.readJSON(ctx, KeySyncStatus, &status)
	if err != nil {
		s.logger.Warn("failed to read sync status", "error", err)
		return domain.SyncStatus{}
	}
	if !found {
		return domain.SyncStatus{}
	}
	return status
}

// Sync pulls favorites, watchlist and ratings from the remote account and
// replaces the local copies wholesale. When any fetch fails nothing local is
// changed, the status is recorded as not synced (keeping the previous
// timestamp) and the error is returned. Watched has no remote counterpart and
// is left alone.
func (s *Service) Sync(ctx context.Context) (domain.SyncStatus, error) {
	if s.remote == nil {
		return s.syncFailed(ctx, domain.ErrNotAuthenticated)
	}

	var (
		favorites []domain.CatalogItem
		watchlist []domain.CatalogItem
		rated     []domain.RatedItem
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		favorites, err = s.remote.AllFavorites(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		watchlist, err = s.remote.AllWatchlist(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		rated, err = s.remote.AllRated(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		return s.syncFailed(ctx, err)
	}

	ratings := make(map[int64]float64, len(rated))
	for _, r := range rated {
		ratings[r.Item.ID] = r.Rating
	}

	if err := s.writeJSON(ctx, KeyFavorites, uniqueByID(favorites)); err != nil {
		return s.syncFailed(ctx, err)
	}
	if err := s.writeJSON(ctx, KeyWatchlist, uniqueByID(watchlist)); err != nil {
		return s.syncFailed(ctx, err)
	}
	if err := s.writeJSON(ctx, KeyRatings, ratings); err != nil {
		return s.syncFailed(ctx, err)
	}

	now := s.now()
	status := domain.SyncStatus{LastSync: &now, Synced: true}
	if err := s.writeJSON(ctx, KeySyncStatus, status); err != nil {
		// Lists were replaced but the stored status still holds the previous
		// run; report what is stored, marked not synced
		s.logger.Error("failed to save sync status", "error", err)
		stored := s.SyncStatus(ctx)
		stored.Synced = false
		return stored, err
	}

	s.logger.Info("synced account lists",
		"favorites", len(favorites),
		"watchlist", len(watchlist),
		"ratings", len(ratings),
	)
	return status, nil
}

// StartSync runs Sync as a detached background task. It may finish after
// other list operations and overwrite their results.
func (s *Service) StartSync(ctx context.Context) {
	s.tasks.Go(func() {
		if _, err := s.Sync(ctx); err != nil {
			s.logger.Warn("startup sync failed", "error", err)
		}
	})
}

// syncFailed records synced=false, keeping the previous timestamp
func (s *Service) syncFailed(ctx context.Context, cause error) (domain.SyncStatus, error) {
	s.logger.Warn("sync aborted", "error", cause)

	status := s.SyncStatus(ctx)
	status.Synced = false
	if err := s.writeJSON(ctx, KeySyncStatus, status); err != nil {
		s.logger.Error("failed to save sync status", "error", err)
	}
	return status, cause
}

func uniqueByID(items []domain.CatalogItem) []domain.CatalogItem {
	seen := make(map[int64]bool, len(items))
	out := make([]domain.CatalogItem, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, stripFlags(item))
	}
	return out
}
