package lists

import (
	"fmt"

	"github.com/mmcdole/reelkeep/internal/domain"
)

// Storage keys. One key per list kind, one for ratings, one for sync status.
const (
	KeyFavorites  = "favorites"
	KeyWatchlist  = "watchlist"
	KeyWatched    = "watched"
	KeyRatings    = "ratings"
	KeySyncStatus = "sync_status"
)

// clearableKeys are wiped by ClearAll. Sync status survives.
var clearableKeys = []string{KeyFavorites, KeyWatchlist, KeyWatched, KeyRatings}

func listKey(kind domain.ListKind) (string, error) {
	switch kind {
	case domain.Favorites:
		return KeyFavorites, nil
	case domain.Watchlist:
		return KeyWatchlist, nil
	case domain.Watched:
		return KeyWatched, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownListKind, kind)
	}
}
