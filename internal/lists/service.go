package lists

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/sourcegraph/conc"
)

const defaultMirrorTimeout = 15 * time.Second

// Service owns the user's saved lists and ratings. Local storage is the source
// of truth; every mutation is mirrored to the remote account in the background
// and remote failures are only logged.
//
// Read-modify-write sequences are not serialized: two overlapping mutations of
// the same list race and the last write wins.
type Service struct {
	store  domain.Store
	remote domain.AccountRepository // nil in offline mode
	logger *slog.Logger

	mirrorTimeout time.Duration
	now           func() time.Time

	// Detached background work (remote mirrors, startup sync)
	tasks conc.WaitGroup

	// Pending remote mirrors, sent one at a time in mutation order
	mirrorMu sync.Mutex
	mirrors  []func()
	draining bool
}

// Option configures a Service
type Option func(*Service)

// WithMirrorTimeout bounds each background remote mirror call
func WithMirrorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.mirrorTimeout = d
		}
	}
}

// WithClock overrides the time source used for sync timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new list service. remote may be nil, in which case
// nothing is mirrored and Sync reports domain.ErrNotAuthenticated.
func NewService(store domain.Store, remote domain.AccountRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:         store,
		remote:        remote,
		logger:        logger,
		mirrorTimeout: defaultMirrorTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns the items saved in kind. Each item is annotated only with the
// flag of kind itself; membership in other lists is not computed.
// Read failures yield an empty slice.
func (s *Service) GetAll(ctx context.Context, kind domain.ListKind) []domain.CatalogItem {
	_, items, err := s.readList(ctx, kind)
	if err != nil {
		s.logger.Warn("failed to read list", "error", err, "list", kind)
		return []domain.CatalogItem{}
	}

	out := make([]domain.CatalogItem, len(items))
	for i, item := range items {
		out[i] = withFlag(item, kind)
	}
	return out
}

// Contains reports whether id is saved in kind. Local only.
func (s *Service) Contains(ctx context.Context, kind domain.ListKind, id int64) bool {
	_, items, err := s.readList(ctx, kind)
	if err != nil {
		s.logger.Warn("failed to read list", "error", err, "list", kind)
		return false
	}
	return indexOf(items, id) >= 0
}

// Add saves item in kind. Adding an item that is already present is a no-op.
// Storage failures are returned; the remote mirror never fails the call.
func (s *Service) Add(ctx context.Context, kind domain.ListKind, item domain.CatalogItem) error {
	key, items, err := s.readList(ctx, kind)
	if err != nil {
		return err
	}
	if indexOf(items, item.ID) >= 0 {
		return nil
	}

	items = append(items, stripFlags(item))
	if err := s.writeJSON(ctx, key, items); err != nil {
		s.logger.Error("failed to save list", "error", err, "list", kind, "movieID", item.ID)
		return err
	}

	s.logger.Debug("added to list", "list", kind, "movieID", item.ID)
	s.mirrorMembership(ctx, kind, item.ID, true)
	return nil
}

// Remove deletes id from kind. Removing an absent id is a no-op.
func (s *Service) Remove(ctx context.Context, kind domain.ListKind, id int64) error {
	key, items, err := s.readList(ctx, kind)
	if err != nil {
		return err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil
	}

	items = slices.Delete(items, idx, idx+1)
	if err := s.writeJSON(ctx, key, items); err != nil {
		s.logger.Error("failed to save list", "error", err, "list", kind, "movieID", id)
		return err
	}

	s.logger.Debug("removed from list", "list", kind, "movieID", id)
	s.mirrorMembership(ctx, kind, id, false)
	return nil
}

// Toggle flips membership of item in kind and returns the new membership.
// The read and the write are separate steps; concurrent toggles race.
func (s *Service) Toggle(ctx context.Context, kind domain.ListKind, item domain.CatalogItem) (bool, error) {
	_, items, err := s.readList(ctx, kind)
	if err != nil {
		return false, err
	}

	if indexOf(items, item.ID) >= 0 {
		if err := s.Remove(ctx, kind, item.ID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.Add(ctx, kind, item); err != nil {
		return false, err
	}
	return true, nil
}

// Annotate returns a copy of items with every membership flag set from the
// current local lists. Intended for catalog results; GetAll does not use it.
func (s *Service) Annotate(ctx context.Context, items []domain.CatalogItem) []domain.CatalogItem {
	sets := make(map[domain.ListKind]map[int64]bool, len(domain.AllListKinds))
	for _, kind := range domain.AllListKinds {
		_, saved, err := s.readList(ctx, kind)
		if err != nil {
			s.logger.Warn("failed to read list", "error", err, "list", kind)
		}
		set := make(map[int64]bool, len(saved))
		for _, it := range saved {
			set[it.ID] = true
		}
		sets[kind] = set
	}

	out := make([]domain.CatalogItem, len(items))
	for i, item := range items {
		item.IsFavorite = sets[domain.Favorites][item.ID]
		item.IsInWatchlist = sets[domain.Watchlist][item.ID]
		item.IsWatched = sets[domain.Watched][item.ID]
		out[i] = item
	}
	return out
}

// Wait blocks until all background work (mirrors, startup sync) has finished.
func (s *Service) Wait() {
	if r := s.tasks.WaitAndRecover(); r != nil {
		s.logger.Error("background task panicked", "panic", r.Value)
	}
}

// mirrorMembership pushes a list change to the remote account.
// Watched has no remote counterpart.
func (s *Service) mirrorMembership(ctx context.Context, kind domain.ListKind, id int64, member bool) {
	switch kind {
	case domain.Favorites:
		s.mirror(ctx, "set_favorite", id, func(ctx context.Context) error {
			return s.remote.SetFavorite(ctx, id, member)
		})
	case domain.Watchlist:
		s.mirror(ctx, "set_watchlist", id, func(ctx context.Context) error {
			return s.remote.SetWatchlist(ctx, id, member)
		})
	}
}

// mirror queues fn as a detached background task. It keeps ctx's values but
// not its cancellation, and each call is bounded by the mirror timeout.
// Mirrors run one at a time in the order they were queued, so the remote
// account sees mutations in the order they were made locally.
func (s *Service) mirror(ctx context.Context, op string, id int64, fn func(ctx context.Context) error) {
	if s.remote == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	job := func() {
		ctx, cancel := context.WithTimeout(detached, s.mirrorTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Warn("remote mirror failed", "error", err, "op", op, "movieID", id)
			return
		}
		s.logger.Debug("remote mirror done", "op", op, "movieID", id)
	}

	s.mirrorMu.Lock()
	s.mirrors = append(s.mirrors, job)
	if s.draining {
		s.mirrorMu.Unlock()
		return
	}
	s.draining = true
	s.mirrorMu.Unlock()

	s.tasks.Go(s.drainMirrors)
}

// drainMirrors runs queued mirrors until the queue is empty
func (s *Service) drainMirrors() {
	// A panicking mirror must not leave the queue marked busy
	finished := false
	defer func() {
		if !finished {
			s.mirrorMu.Lock()
			s.draining = false
			s.mirrorMu.Unlock()
		}
	}()

	for {
		s.mirrorMu.Lock()
		if len(s.mirrors) == 0 {
			// Cleared under the same lock mirror() checks, so no job is stranded
			s.draining = false
			finished = true
			s.mirrorMu.Unlock()
			return
		}
		job := s.mirrors[0]
		s.mirrors = s.mirrors[1:]
		s.mirrorMu.Unlock()

		job()
	}
}

func indexOf(items []domain.CatalogItem, id int64) int {
	return slices.IndexFunc(items, func(it domain.CatalogItem) bool { return it.ID == id })
}

func stripFlags(item domain.CatalogItem) domain.CatalogItem {
	item.IsFavorite = false
	item.IsInWatchlist = false
	item.IsWatched = false
	return item
}

func withFlag(item domain.CatalogItem, kind domain.ListKind) domain.CatalogItem {
	item = stripFlags(item)
	switch kind {
	case domain.Favorites:
		item.IsFavorite = true
	case domain.Watchlist:
		item.IsInWatchlist = true
	case domain.Watched:
		item.IsWatched = true
	}
	return item
}
