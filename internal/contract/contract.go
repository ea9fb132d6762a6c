// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/whoknows/whoknows/schema"
)

// GitClient defines the operations needed to obtain blame attribution data.
// This allows the core logic to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command and returns the output. Its use should be
	// minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git
	// repository containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetBlame returns raw `git blame --porcelain` output for a
	// repo-relative file path.
	GetBlame(ctx context.Context, repoPath string, path string) ([]byte, error)
}

// IdentityKeyFunc maps an author email to its canonical author key. The
// default identity mapping means exact, case-sensitive emails; alternate
// implementations are the extension point for identity merging.
type IdentityKeyFunc func(email string) string

// CacheManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetBlameStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for blame output caching.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking ranking runs and their results.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, filesRanked int) error

	// RecordAuthorScores stores the ranked authors produced for a file.
	RecordAuthorScores(runID int64, filePath string, authors []schema.AuthorAggregate) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunsStatus, error)

	// GetAllRuns returns every tracked run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllAuthorScores returns every persisted ranked-author row.
	GetAllAuthorScores() ([]schema.AuthorScoreRecord, error)

	// Close closes the underlying connection.
	Close() error
}
