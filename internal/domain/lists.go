package domain

import (
	"fmt"
	"strings"
	"time"
)

// ListKind identifies one of the user-curated movie lists
type ListKind int

const (
	Favorites ListKind = iota
	Watchlist
	Watched
)

// AllListKinds is every list kind in display order
var AllListKinds = []ListKind{Favorites, Watchlist, Watched}

func (k ListKind) String() string {
	switch k {
	case Favorites:
		return "favorites"
	case Watchlist:
		return "watchlist"
	case Watched:
		return "watched"
	default:
		return fmt.Sprintf("ListKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name so logs and JSON read "favorites" rather than 0
func (k ListKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownListKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *ListKind) UnmarshalText(text []byte) error {
	parsed, err := ParseListKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Valid reports whether k is a known list kind
func (k ListKind) Valid() bool {
	return k >= Favorites && k <= Watched
}

// ParseListKind converts a name ("favorites", "watchlist", "watched") to a ListKind.
// Matching is case-insensitive and accepts the singular "favorite".
func ParseListKind(s string) (ListKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "favorites", "favorite", "favs":
		return Favorites, nil
	case "watchlist":
		return Watchlist, nil
	case "watched":
		return Watched, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownListKind, s)
	}
}

// RatedItem is a catalog item together with the account's rating for it
type RatedItem struct {
	Item   CatalogItem
	Rating float64
}

// SyncStatus records the outcome of the most recent reconciliation
type SyncStatus struct {
	LastSync *time.Time `json:"lastSync"`
	Synced   bool       `json:"synced"`
}

// Rating bounds accepted by SetRating
const (
	MinRating = 0.5
	MaxRating = 10.0
)
