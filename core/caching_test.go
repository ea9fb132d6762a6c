package core

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/internal/iocache"
)

func newCachingManager(store contract.CacheStore) *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetBlameStore").Return(store)
	return mgr
}

func TestCachedBlameRecords_NoStore(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")
	mgr := newCachingManager(nil)

	client := &contract.MockGitClient{}
	client.On("GetBlame", mock.Anything, "/repo", "main.go").Return(blameRanking, nil)

	records, err := cachedBlameRecords(ctx, cfg, client, mgr, "main.go")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	client.AssertExpectations(t)
}

func TestCachedBlameRecords_MissFetchesAndStores(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, blameRanking, currentCacheVersion, mock.Anything).Return(nil)
	mgr := newCachingManager(store)

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("GetBlame", mock.Anything, "/repo", "main.go").Return(blameRanking, nil)

	records, err := cachedBlameRecords(ctx, cfg, client, mgr, "main.go")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	store.AssertExpectations(t)
}

func TestCachedBlameRecords_HitSkipsGit(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(blameRanking, currentCacheVersion, time.Now().Unix(), nil)
	mgr := newCachingManager(store)

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)

	records, err := cachedBlameRecords(ctx, cfg, client, mgr, "main.go")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	client.AssertNotCalled(t, "GetBlame", mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedBlameRecords_StaleEntryRefetches(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	staleTS := time.Now().Add(-cacheMaxAge - time.Hour).Unix()
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(blameRanking, currentCacheVersion, staleTS, nil)
	store.On("Set", mock.Anything, blameRanking, currentCacheVersion, mock.Anything).Return(nil)
	mgr := newCachingManager(store)

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("GetBlame", mock.Anything, "/repo", "main.go").Return(blameRanking, nil)

	records, err := cachedBlameRecords(ctx, cfg, client, mgr, "main.go")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	client.AssertExpectations(t)
}

func TestCachedBlameRecords_VersionMismatchRefetches(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(blameRanking, currentCacheVersion+1, time.Now().Unix(), nil)
	store.On("Set", mock.Anything, blameRanking, currentCacheVersion, mock.Anything).Return(nil)
	mgr := newCachingManager(store)

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("GetBlame", mock.Anything, "/repo", "main.go").Return(blameRanking, nil)

	_, err := cachedBlameRecords(ctx, cfg, client, mgr, "main.go")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestCachedBlameRecords_CorruptEntryRefetches(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return([]byte("not porcelain at all"), currentCacheVersion, time.Now().Unix(), nil)
	store.On("Set", mock.Anything, blameRanking, currentCacheVersion, mock.Anything).Return(nil)
	mgr := newCachingManager(store)

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("GetBlame", mock.Anything, "/repo", "main.go").Return(blameRanking, nil)

	records, err := cachedBlameRecords(ctx, cfg, client, mgr, "main.go")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	client.AssertExpectations(t)
}

func TestGenerateCacheKey(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)

	keyA := generateCacheKey(ctx, cfg, client, "main.go")
	keyB := generateCacheKey(ctx, cfg, client, "util.go")

	assert.Len(t, keyA, 64)
	assert.NotEqual(t, keyA, keyB, "different paths must use different keys")
	assert.Equal(t, keyA, generateCacheKey(ctx, cfg, client, "main.go"), "keys must be deterministic")
}

func TestGenerateCacheKey_HashErrorStillKeys(t *testing.T) {
	ctx := context.Background()
	cfg := newRankingConfig("main.go")

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("", errors.New("not a repo"))

	key := generateCacheKey(ctx, cfg, client, "main.go")
	assert.Len(t, key, 64)
}
