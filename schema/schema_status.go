package schema

import "time"

// CacheStatus holds status information about the blame cache store.
type CacheStatus struct {
	Backend         DatabaseBackend
	Connected       bool
	TotalEntries    int64
	LastEntryTime   time.Time
	OldestEntryTime time.Time
	TableSizeBytes  int64
}

// RunsStatus holds status information about the run-tracking store.
type RunsStatus struct {
	Backend          DatabaseBackend
	Connected        bool
	TotalRuns        int64
	LastRunID        int64
	LastRunTime      time.Time
	OldestRunTime    time.Time
	TotalFilesRanked int64
	TableSizes       map[string]int64
}

// RunRecord is one tracked invocation as read back from the run store.
type RunRecord struct {
	RunID        int64
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   int64
	FilesRanked  int
	ConfigParams string // JSON-encoded parameters
}

// AuthorScoreRecord is one persisted ranked-author row.
type AuthorScoreRecord struct {
	RunID      int64
	FilePath   string
	Rank       int
	Name       string
	Email      string
	Score      float64
	Commits    int
	Lines      int
	Latest     time.Time
	Earliest   time.Time
	RecordedAt time.Time
}
