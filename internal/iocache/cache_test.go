package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/schema"
)

func TestStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		cachePath := filepath.Join(tmpDir, "cache.db")
		runsPath := filepath.Join(tmpDir, "runs.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Test initialization with SQLite backends
		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, runsPath)
		require.NoError(t, err, "Failed to initialize persistence")

		// Test that stores are accessible
		assert.NotNil(t, Manager.GetBlameStore(), "Blame store should not be nil")
		assert.NotNil(t, Manager.GetRunStore(), "Run store should not be nil")

		// Test cleanup
		CloseStores()

		// Verify database files were created
		_, err = os.Stat(cachePath)
		assert.False(t, os.IsNotExist(err), "Cache database file should be created")
		_, err = os.Stat(runsPath)
		assert.False(t, os.IsNotExist(err), "Runs database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		cachePath := filepath.Join(tmpDir, "cache.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Multiple initializations should be safe (sync.Once)
		err1 := InitStores(schema.SQLiteBackend, cachePath, schema.NoneBackend, "")
		err2 := InitStores(schema.SQLiteBackend, cachePath, schema.NoneBackend, "")
		err3 := InitStores(schema.SQLiteBackend, cachePath, schema.NoneBackend, "")

		assert.NoError(t, err1, "First init should not fail")
		assert.NoError(t, err2, "Second init should not fail")
		assert.NoError(t, err3, "Third init should not fail")

		// Multiple closes should be safe (sync.Once)
		CloseStores()
		CloseStores()
		CloseStores()
	})

	t.Run("none backend", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Test initialization with None backends (no database)
		err := InitStores(schema.NoneBackend, "", schema.NoneBackend, "")
		require.NoError(t, err, "Failed to initialize persistence with none backend")

		assert.NotNil(t, Manager.GetBlameStore(), "Blame store should still be non-nil")
		assert.NotNil(t, Manager.GetRunStore(), "Run store should still be non-nil")

		CloseStores()
	})
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		require.NoError(t, os.WriteFile(dbPath, []byte("stub"), 0o600))

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))

		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err), "Database file should be removed")
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "missing.db")
		assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite empty path errors", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unknown backend errors", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestClearRuns(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "runs.db")
		require.NoError(t, os.WriteFile(dbPath, []byte("stub"), 0o600))

		require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))

		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err), "Database file should be removed")
	})

	t.Run("none backend is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	})
}
