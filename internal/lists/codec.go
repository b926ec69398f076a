package lists

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmcdole/reelkeep/internal/domain"
)

// readJSON loads key into dest. found is false when the key is absent or its
// content is corrupt; corrupt content is logged and otherwise treated as missing.
// Storage failures are returned wrapped with domain.ErrStorage.
func (s *Service) readJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, found, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("discarding corrupt stored value", "key", key, "error", fmt.Errorf("%w: %w", domain.ErrCorruptValue, err))
		return false, nil
	}
	return true, nil
}

func (s *Service) writeJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

// readList returns the stored items for kind (empty when absent or corrupt)
func (s *Service) readList(ctx context.Context, kind domain.ListKind) (string, []domain.CatalogItem, error) {
	key, err := listKey(kind)
	if err != nil {
		return "", nil, err
	}
	var items []domain.CatalogItem
	found, err := s.readJSON(ctx, key, &items)
	if err != nil {
		return key, nil, err
	}
	if !found {
		items = nil
	}
	return key, items, nil
}

// readRatings returns the stored rating map (empty when absent or corrupt)
func (s *Service) readRatings(ctx context.Context) (map[int64]float64, error) {
	ratings := make(map[int64]float64)
	found, err := s.readJSON(ctx, KeyRatings, &ratings)
	if err != nil {
		return nil, err
	}
	if !found || ratings == nil {
		return make(map[int64]float64), nil
	}
	return ratings, nil
}
