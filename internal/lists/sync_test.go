package lists

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/reelkeep/internal/domain"
	"github.com/mmcdole/reelkeep/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newSyncService(t *testing.T, remote *fakeAccount) (*Service, *faultyStore) {
	t.Helper()
	st := newFaultyStore()
	svc := NewService(st, remote, discardLogger(), WithClock(func() time.Time { return syncTime }))
	t.Cleanup(svc.Wait)
	return svc, st
}

func rawValue(t *testing.T, st domain.Store, key string) []byte {
	t.Helper()
	data, _, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	return data
}

func TestSyncReplacesLocalLists(t *testing.T) {
	ctx := context.Background()
	remote := &fakeAccount{
		favorites: []domain.CatalogItem{movie(278, "Shawshank"), movie(278, "Shawshank")},
		watchlist: []domain.CatalogItem{movie(550, "Fight Club")},
		rated:     []domain.RatedItem{{Item: movie(680, "Pulp Fiction"), Rating: 8.5}},
	}
	svc, _ := newSyncService(t, remote)

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(13, "Forrest Gump")))
	require.NoError(t, svc.Add(ctx, domain.Watched, movie(13, "Forrest Gump")))
	require.NoError(t, svc.SetRating(ctx, 13, 4))
	svc.Wait()

	status, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, status.Synced)
	require.NotNil(t, status.LastSync)
	assert.True(t, syncTime.Equal(*status.LastSync))

	assert.Equal(t, []int64{278}, ids(svc.GetAll(ctx, domain.Favorites)))
	assert.Equal(t, []int64{550}, ids(svc.GetAll(ctx, domain.Watchlist)))
	assert.Equal(t, []int64{13}, ids(svc.GetAll(ctx, domain.Watched)), "watched is not synced")
	assert.Equal(t, map[int64]float64{680: 8.5}, svc.Ratings(ctx))

	stored := svc.SyncStatus(ctx)
	assert.True(t, stored.Synced)
	require.NotNil(t, stored.LastSync)
	assert.True(t, syncTime.Equal(*stored.LastSync))
}

func TestSyncFailureLeavesListsUntouched(t *testing.T) {
	ctx := context.Background()
	remote := &fakeAccount{}
	svc, st := newSyncService(t, remote)

	// Earlier successful sync sets the timestamp
	_, err := svc.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Add(ctx, domain.Favorites, movie(278, "Shawshank")))
	require.NoError(t, svc.Add(ctx, domain.Watchlist, movie(550, "Fight Club")))
	require.NoError(t, svc.SetRating(ctx, 680, 8.5))
	svc.Wait()

	keys := []string{KeyFavorites, KeyWatchlist, KeyWatched, KeyRatings}
	before := map[string][]byte{}
	for _, key := range keys {
		before[key] = rawValue(t, st, key)
	}

	remote.favorites = []domain.CatalogItem{movie(1, "Other")}
	remote.watchlistErr = domain.ErrRemoteUnavailable

	status, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.False(t, status.Synced)
	require.NotNil(t, status.LastSync, "previous timestamp is kept")
	assert.True(t, syncTime.Equal(*status.LastSync))

	for _, key := range keys {
		assert.Equal(t, before[key], rawValue(t, st, key), "key %s changed", key)
	}

	stored := svc.SyncStatus(ctx)
	assert.False(t, stored.Synced)
	require.NotNil(t, stored.LastSync)
}

func TestSyncWithoutSession(t *testing.T) {
	ctx := context.Background()
	remote := &fakeAccount{
		favoritesErr: domain.ErrNotAuthenticated,
		watchlistErr: domain.ErrNotAuthenticated,
		ratedErr:     domain.ErrNotAuthenticated,
	}
	svc, _ := newSyncService(t, remote)

	status, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.False(t, status.Synced)
	assert.Nil(t, status.LastSync)
}

func TestSyncOffline(t *testing.T) {
	svc := NewService(store.NewMemory(), nil, discardLogger())

	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSyncStorageFailureIsReported(t *testing.T) {
	ctx := context.Background()
	remote := &fakeAccount{favorites: []domain.CatalogItem{movie(278, "Shawshank")}}
	svc, st := newSyncService(t, remote)
	st.failSet[KeyWatchlist] = true

	status, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.False(t, status.Synced)
	assert.False(t, svc.SyncStatus(ctx).Synced)
}

func TestSyncStatusNeverSynced(t *testing.T) {
	svc, _ := newSyncService(t, &fakeAccount{})

	status := svc.SyncStatus(context.Background())
	assert.Nil(t, status.LastSync)
	assert.False(t, status.Synced)
}

func TestStartSyncRunsInBackground(t *testing.T) {
	ctx := context.Background()
	remote := &fakeAccount{watchlist: []domain.CatalogItem{movie(550, "Fight Club")}}
	svc, _ := newSyncService(t, remote)

	svc.StartSync(ctx)
	svc.Wait()

	assert.True(t, svc.SyncStatus(ctx).Synced)
	assert.True(t, svc.Contains(ctx, domain.Watchlist, 550))
}

func TestClearAllRemovesEverything(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSyncService(t, &fakeAccount{})

	_, err := svc.Sync(ctx)
	require.NoError(t, err)
	for _, kind := range domain.AllListKinds {
		require.NoError(t, svc.Add(ctx, kind, movie(278, "Shawshank")))
	}
	require.NoError(t, svc.SetRating(ctx, 278, 9))

	require.NoError(t, svc.ClearAll(ctx))

	for _, kind := range domain.AllListKinds {
		assert.Empty(t, svc.GetAll(ctx, kind), "list %s", kind)
	}
	assert.Empty(t, svc.Ratings(ctx))
	assert.True(t, svc.SyncStatus(ctx).Synced, "sync status survives a clear")
}

func TestClearAllAttemptsEveryKey(t *testing.T) {
	ctx := context.Background()
	svc, st := newSyncService(t, &fakeAccount{})
	for _, kind := range domain.AllListKinds {
		require.NoError(t, svc.Add(ctx, kind, movie(1, "A")))
	}
	require.NoError(t, svc.SetRating(ctx, 1, 5))
	st.failRemove[KeyWatchlist] = true

	err := svc.ClearAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.True(t, errors.Is(err, errBoom))

	assert.Empty(t, svc.GetAll(ctx, domain.Favorites))
	assert.Empty(t, svc.GetAll(ctx, domain.Watched))
	assert.Empty(t, svc.Ratings(ctx))
	assert.Len(t, svc.GetAll(ctx, domain.Watchlist), 1, "failed key is not rolled back or retried")
}

func TestSyncStatusWriteFailureIsNotReportedAsSynced(t *testing.T) {
	ctx := context.Background()
	remote := &fakeAccount{favorites: []domain.CatalogItem{movie(278, "Shawshank")}}
	svc, st := newSyncService(t, remote)
	st.failSet[KeySyncStatus] = true

	status, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.False(t, status.Synced)
	assert.Nil(t, status.LastSync, "nothing newer than the stored status is reported")
	assert.Equal(t, svc.SyncStatus(ctx), status)
}
