// Package parquet provides data structures and functions for exporting run
// tracking data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/whoknows/whoknows/schema"
)

// RankingRun represents a single ranking run with metadata.
// This struct maps to the whoknows_runs database table.
type RankingRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// FilesRanked is the number of files ranked in this run
	FilesRanked int32 `parquet:"files_ranked,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// AuthorScoreRow represents one ranked author for one file in a run.
// This struct maps to the whoknows_author_scores database table.
type AuthorScoreRow struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// FilePath is the repo-relative path of the ranked file
	FilePath string `parquet:"file_path,snappy"`

	// Rank is the author's position in the ranking, starting at 1
	Rank int32 `parquet:"author_rank,snappy"`

	// Name is the author's most recent display name
	Name string `parquet:"author_name,snappy"`

	// Email is the author's canonical email key
	Email string `parquet:"author_email,snappy"`

	// Score is the final weighted score
	Score float64 `parquet:"score,snappy"`

	// Commits is the distinct commit count
	Commits int32 `parquet:"commits,snappy"`

	// Lines is the counted line total
	Lines int32 `parquet:"line_count,snappy"`

	// Latest is the newest commit time attributed to the author
	Latest time.Time `parquet:"latest_commit,snappy"`

	// Earliest is the oldest commit time attributed to the author
	Earliest time.Time `parquet:"earliest_commit,snappy"`

	// RecordedAt is when this row was persisted
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// WriteRunsParquet writes a slice of RankingRun structs to a Parquet file.
func WriteRunsParquet(data []RankingRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the RankingRun struct tags
	writer := parquet.NewGenericWriter[RankingRun](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteAuthorScoresParquet writes a slice of AuthorScoreRow structs to a Parquet file.
func WriteAuthorScoresParquet(data []AuthorScoreRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AuthorScoreRow struct tags
	writer := parquet.NewGenericWriter[AuthorScoreRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to RankingRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RankingRun {
	result := make([]RankingRun, len(records))
	for i, record := range records {
		run := RankingRun{
			RunID:       record.RunID,
			StartTime:   record.StartTime,
			EndTime:     record.EndTime,
			FilesRanked: int32(record.FilesRanked),
		}
		if record.DurationMs > 0 {
			durationMs := record.DurationMs
			run.RunDurationMs = &durationMs
		}
		if record.ConfigParams != "" {
			configParams := record.ConfigParams
			run.ConfigParams = &configParams
		}
		result[i] = run
	}
	return result
}

// ConvertAuthorScoreRecords converts schema.AuthorScoreRecord to AuthorScoreRow for Parquet export.
func ConvertAuthorScoreRecords(records []schema.AuthorScoreRecord) []AuthorScoreRow {
	result := make([]AuthorScoreRow, len(records))
	for i, record := range records {
		result[i] = AuthorScoreRow{
			RunID:      record.RunID,
			FilePath:   record.FilePath,
			Rank:       int32(record.Rank),
			Name:       record.Name,
			Email:      record.Email,
			Score:      record.Score,
			Commits:    int32(record.Commits),
			Lines:      int32(record.Lines),
			Latest:     record.Latest,
			Earliest:   record.Earliest,
			RecordedAt: record.RecordedAt,
		}
	}
	return result
}
