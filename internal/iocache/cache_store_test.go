package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/schema"
)

func newTempCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(blameCacheTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestCacheStoreRoundTrip(t *testing.T) {
	store := newTempCacheStore(t)

	ts := time.Now().Unix()
	require.NoError(t, store.Set("key-a", []byte("porcelain bytes"), 1, ts))

	value, version, gotTS, err := store.Get("key-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("porcelain bytes"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, ts, gotTS)
}

func TestCacheStoreOverwrite(t *testing.T) {
	store := newTempCacheStore(t)

	require.NoError(t, store.Set("key-a", []byte("old"), 1, 100))
	require.NoError(t, store.Set("key-a", []byte("new"), 2, 200))

	value, version, ts, err := store.Get("key-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)
}

func TestCacheStoreMissingKey(t *testing.T) {
	store := newTempCacheStore(t)

	_, _, _, err := store.Get("nothing-here")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCacheStoreStatus(t *testing.T) {
	store := newTempCacheStore(t)

	require.NoError(t, store.Set("key-a", []byte("a"), 1, 100))
	require.NoError(t, store.Set("key-b", []byte("b"), 1, 200))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(2), status.TotalEntries)
	assert.Equal(t, time.Unix(200, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(100, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(blameCacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("key", []byte("value"), 1, 100))

	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	assert.NoError(t, store.Close())
}

func TestNewCacheStoreRejectsBadTableName(t *testing.T) {
	_, err := NewCacheStore("blame; DROP TABLE users", schema.SQLiteBackend, filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}

func TestNewCacheStoreUnsupportedBackend(t *testing.T) {
	_, err := NewCacheStore(blameCacheTable, schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}
