package lists

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/mmcdole/reelkeep/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type remoteCall struct {
	Op    string
	ID    int64
	Flag  bool
	Value float64
}

// fakeAccount records mutations and serves canned account lists
type fakeAccount struct {
	mu    sync.Mutex
	calls []remoteCall

	mutateErr error
	addDelay  time.Duration // Slows SetFavorite/SetWatchlist calls that add

	favorite map[int64]bool // Remote favorite state after all calls

	favorites    []domain.CatalogItem
	watchlist    []domain.CatalogItem
	rated        []domain.RatedItem
	favoritesErr error
	watchlistErr error
	ratedErr     error
}

func (f *fakeAccount) record(c remoteCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.mutateErr
}

func (f *fakeAccount) Calls() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteCall(nil), f.calls...)
}

func (f *fakeAccount) SetFavorite(_ context.Context, id int64, favorite bool) error {
	if favorite && f.addDelay > 0 {
		time.Sleep(f.addDelay)
	}
	f.mu.Lock()
	if f.favorite == nil {
		f.favorite = make(map[int64]bool)
	}
	f.favorite[id] = favorite
	f.mu.Unlock()
	return f.record(remoteCall{Op: "favorite", ID: id, Flag: favorite})
}

func (f *fakeAccount) IsFavorite(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.favorite[id]
}

func (f *fakeAccount) SetWatchlist(_ context.Context, id int64, watchlist bool) error {
	if watchlist && f.addDelay > 0 {
		time.Sleep(f.addDelay)
	}
	return f.record(remoteCall{Op: "watchlist", ID: id, Flag: watchlist})
}

func (f *fakeAccount) SetRating(_ context.Context, id int64, value float64) error {
	return f.record(remoteCall{Op: "rating", ID: id, Value: value})
}

func (f *fakeAccount) AllFavorites(context.Context) ([]domain.CatalogItem, error) {
	return f.favorites, f.favoritesErr
}

func (f *fakeAccount) AllWatchlist(context.Context) ([]domain.CatalogItem, error) {
	return f.watchlist, f.watchlistErr
}

func (f *fakeAccount) AllRated(context.Context) ([]domain.RatedItem, error) {
	return f.rated, f.ratedErr
}

// faultyStore fails selected keys on demand
type faultyStore struct {
	domain.Store
	failGet    map[string]bool
	failSet    map[string]bool
	failRemove map[string]bool
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		Store:      store.NewMemory(),
		failGet:    map[string]bool{},
		failSet:    map[string]bool{},
		failRemove: map[string]bool{},
	}
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failGet[key] {
		return nil, false, errBoom
	}
	return s.Store.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet[key] {
		return errBoom
	}
	return s.Store.Set(ctx, key, value)
}

func (s *faultyStore) Remove(ctx context.Context, key string) error {
	if s.failRemove[key] {
		return errBoom
	}
	return s.Store.Remove(ctx, key)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *faultyStore, *fakeAccount) {
	t.Helper()
	st := newFaultyStore()
	remote := &fakeAccount{}
	svc := NewService(st, remote, discardLogger(), WithMirrorTimeout(time.Second))
	t.Cleanup(svc.Wait)
	return svc, st, remote
}

func movie(id int64, title string) domain.CatalogItem {
	return domain.CatalogItem{ID: id, Title: title, ReleaseDate: "1994-09-23", VoteAverage: 8.7}
}

func ids(items []domain.CatalogItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestAddRemoveReAddScenario(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	shawshank := movie(278, "The Shawshank Redemption")

	require.NoError(t, svc.Add(ctx, domain.Favorites, shawshank))
	assert.True(t, svc.Contains(ctx, domain.Favorites, 278))

	require.NoError(t, svc.Remove(ctx, domain.Favorites, 278))
	assert.False(t, svc.Contains(ctx, domain.Favorites, 278))

	require.NoError(t, svc.Add(ctx, domain.Favorites, shawshank))
	assert.True(t, svc.Contains(ctx, domain.Favorites, 278))
	assert.Len(t, svc.GetAll(ctx, domain.Favorites), 1)
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)

	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(550, "Fight Club")))
	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(550, "Fight Club (renamed)")))

	items := svc.GetAll(ctx, domain.Watchlist)
	require.Len(t, items, 1)
	assert.Equal(t, "Fight Club", items[0].Title, "the first snapshot is kept")

	svc.Wait()
	assert.Len(t, remote.Calls(), 1, "the no-op add is not mirrored")
}

func TestAddThenRemoveRestoresMembership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, m := range []domain.CatalogItem{movie(1, "A"), movie(2, "B")} {
		require.NoError(t, svc.Add(ctx, domain.Watched, m))
	}
	before := ids(svc.GetAll(ctx, domain.Watched))

	require.NoError(t, svc.Add(ctx, domain.Watched, movie(3, "C")))
	require.NoError(t, svc.Remove(ctx, domain.Watched, 3))

	assert.ElementsMatch(t, before, ids(svc.GetAll(ctx, domain.Watched)))
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)

	require.NoError(t, svc.Remove(ctx, domain.Favorites, 999))
	svc.Wait()
	assert.Empty(t, remote.Calls())
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	m := movie(680, "Pulp Fiction")

	in, err := svc.Toggle(ctx, domain.Favorites, m)
	require.NoError(t, err)
	assert.True(t, in)
	assert.True(t, svc.Contains(ctx, domain.Favorites, 680))

	in, err = svc.Toggle(ctx, domain.Favorites, m)
	require.NoError(t, err)
	assert.False(t, in)
	assert.False(t, svc.Contains(ctx, domain.Favorites, 680))
}

func TestListsAreIndependent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	assert.False(t, svc.Contains(ctx, domain.Watchlist, 278))
	assert.False(t, svc.Contains(ctx, domain.Watched, 278))

	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(278, "Shawshank")))
	require.NoError(t, svc.Remove(ctx, domain.Favorites, 278))
	assert.True(t, svc.Contains(ctx, domain.Watchlist, 278))
}

func TestGetAllAnnotatesOnlyItsOwnList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	m := movie(278, "Shawshank")
	m.IsWatched = true // flags on input are not persisted

	require.NoError(t, svc.Add(ctx, domain.Favorites, m))
	require.NoError(t, svc.Add(ctx, domain.Watchlist, m))

	favs := svc.GetAll(ctx, domain.Favorites)
	require.Len(t, favs, 1)
	assert.True(t, favs[0].IsFavorite)
	assert.False(t, favs[0].IsInWatchlist, "cross-list membership is not computed")
	assert.False(t, favs[0].IsWatched)

	wl := svc.GetAll(ctx, domain.Watchlist)
	require.Len(t, wl, 1)
	assert.True(t, wl[0].IsInWatchlist)
	assert.False(t, wl[0].IsFavorite)
}

func TestGetAllPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, id := range []int64{30, 10, 20} {
		require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(id, "x")))
	}
	assert.Equal(t, []int64{30, 10, 20}, ids(svc.GetAll(ctx, domain.Watchlist)))
}

func TestAnnotateSetsEveryFlag(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(1, "A")))
	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(1, "A")))
	require.NoError(t, svc.Add(ctx, domain.Watched, movie(2, "B")))

	out := svc.Annotate(ctx, []domain.CatalogItem{movie(1, "A"), movie(2, "B"), movie(3, "C")})
	require.Len(t, out, 3)
	assert.True(t, out[0].IsFavorite)
	assert.True(t, out[0].IsInWatchlist)
	assert.False(t, out[0].IsWatched)
	assert.True(t, out[1].IsWatched)
	assert.False(t, out[2].IsFavorite || out[2].IsInWatchlist || out[2].IsWatched)
}

func TestMutationsAreMirrored(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(550, "Fight Club")))
	require.NoError(t, svc.Remove(ctx, domain.Favorites, 278))
	svc.Wait()

	assert.Equal(t, []remoteCall{
		{Op: "favorite", ID: 278, Flag: true},
		{Op: "watchlist", ID: 550, Flag: true},
		{Op: "favorite", ID: 278, Flag: false},
	}, remote.Calls())
}

func TestMirrorsArriveInMutationOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)
	remote.addDelay = 50 * time.Millisecond

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	require.NoError(t, svc.Remove(ctx, domain.Favorites, 278))
	svc.Wait()

	assert.False(t, svc.Contains(ctx, domain.Favorites, 278))
	assert.False(t, remote.IsFavorite(278), "the remote keeps the last local state")
	assert.Equal(t, []remoteCall{
		{Op: "favorite", ID: 278, Flag: true},
		{Op: "favorite", ID: 278, Flag: false},
	}, remote.Calls())
}

func TestToggleTwiceMirrorsInOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)
	remote.addDelay = 20 * time.Millisecond
	m := movie(550, "Fight Club")

	for i := 0; i < 4; i++ {
		_, err := svc.Toggle(ctx, domain.Watchlist, m)
		require.NoError(t, err)
	}
	svc.Wait()

	calls := remote.Calls()
	require.Len(t, calls, 4)
	for i, c := range calls {
		assert.Equal(t, i%2 == 0, c.Flag, "call %d", i)
	}
}

func TestMirrorsQueuedAfterDrainStillRun(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(1, "A")))
	svc.Wait()
	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(2, "B")))
	svc.Wait()

	assert.Len(t, remote.Calls(), 2)
}

func TestWatchedIsNotMirrored(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)

	require.NoError(t, svc.Add(ctx, domain.Watched, movie(278, "Shawshank")))
	require.NoError(t, svc.Remove(ctx, domain.Watched, 278))
	svc.Wait()

	assert.Empty(t, remote.Calls())
}

func TestRemoteFailureDoesNotAffectLocalState(t *testing.T) {
	ctx := context.Background()
	svc, _, remote := newTestService(t)
	remote.mutateErr = domain.ErrRemoteUnavailable

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	require.NoError(t, svc.SetRating(ctx, 278, 9))
	svc.Wait()

	assert.True(t, svc.Contains(ctx, domain.Favorites, 278))
	rating, ok := svc.GetRating(ctx, 278)
	assert.True(t, ok)
	assert.Equal(t, 9.0, rating)
	assert.Len(t, remote.Calls(), 2)
}

func TestMirrorOutlivesCallerContext(t *testing.T) {
	svc, _, remote := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	cancel()
	svc.Wait()

	assert.Len(t, remote.Calls(), 1)
}

func TestOfflineServiceSkipsMirroring(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), nil, discardLogger())

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	require.NoError(t, svc.SetRating(ctx, 278, 8))
	svc.Wait()
	assert.True(t, svc.Contains(ctx, domain.Favorites, 278))
}

func TestStorageWriteFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	svc, st, remote := newTestService(t)
	st.failSet[KeyFavorites] = true

	err := svc.Add(ctx, domain.Favorites, movie(278, "Shawshank"))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, svc.Contains(ctx, domain.Favorites, 278))

	svc.Wait()
	assert.Empty(t, remote.Calls(), "nothing is mirrored when the local write fails")
}

func TestStorageReadFailure(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(1, "A")))
	st.failGet[KeyWatchlist] = true

	assert.Empty(t, svc.GetAll(ctx, domain.Watchlist), "reads fall back to the empty default")
	assert.False(t, svc.Contains(ctx, domain.Watchlist, 1))
	assert.ErrorIs(t, svc.Add(ctx, domain.Watchlist, movie(2, "B")), domain.ErrStorage)
	assert.ErrorIs(t, svc.Remove(ctx, domain.Watchlist, 1), domain.ErrStorage)
	_, err := svc.Toggle(ctx, domain.Watchlist, movie(1, "A"))
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestCorruptValueIsTreatedAsMissing(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	require.NoError(t, st.Set(ctx, KeyFavorites, []byte(`{not json`)))
	require.NoError(t, st.Set(ctx, KeyRatings, []byte(`[1,2]`)))
	require.NoError(t, st.Set(ctx, KeySyncStatus, []byte(`"yes"`)))

	assert.Empty(t, svc.GetAll(ctx, domain.Favorites))
	_, ok := svc.GetRating(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, domain.SyncStatus{}, svc.SyncStatus(ctx))

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	assert.Len(t, svc.GetAll(ctx, domain.Favorites), 1)
}

func TestUnknownListKind(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	assert.ErrorIs(t, svc.Add(ctx, domain.ListKind(9), movie(1, "A")), domain.ErrUnknownListKind)
	assert.Empty(t, svc.GetAll(ctx, domain.ListKind(9)))
}
