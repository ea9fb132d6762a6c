package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/schema"
)

func TestRankingRunStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	runSchema := parquet.SchemaOf(new(RankingRun))
	require.NotNil(t, runSchema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"run_id",
		"start_time",
		"end_time",
		"run_duration_ms",
		"files_ranked",
		"config_params",
	}

	for _, colName := range expectedColumns {
		col, ok := runSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestAuthorScoreRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	rowSchema := parquet.SchemaOf(new(AuthorScoreRow))
	require.NotNil(t, rowSchema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"run_id",
		"file_path",
		"author_rank",
		"author_name",
		"author_email",
		"score",
		"commits",
		"line_count",
		"latest_commit",
		"earliest_commit",
		"recorded_at",
	}

	for _, colName := range expectedColumns {
		col, ok := rowSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func sampleRunRecords() []schema.RunRecord {
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	return []schema.RunRecord{
		{
			RunID:        1,
			StartTime:    start,
			EndTime:      &end,
			DurationMs:   90000,
			FilesRanked:  3,
			ConfigParams: `{"limit":10}`,
		},
		{
			RunID:     2,
			StartTime: start.Add(time.Hour),
			// Still running: EndTime, DurationMs and ConfigParams absent
		},
	}
}

func TestConvertRunRecords(t *testing.T) {
	runs := ConvertRunRecords(sampleRunRecords())
	require.Len(t, runs, 2)

	assert.Equal(t, int64(1), runs[0].RunID)
	require.NotNil(t, runs[0].RunDurationMs)
	assert.Equal(t, int64(90000), *runs[0].RunDurationMs)
	require.NotNil(t, runs[0].ConfigParams)
	assert.Equal(t, `{"limit":10}`, *runs[0].ConfigParams)
	assert.Equal(t, int32(3), runs[0].FilesRanked)

	assert.Nil(t, runs[1].EndTime)
	assert.Nil(t, runs[1].RunDurationMs)
	assert.Nil(t, runs[1].ConfigParams)
}

func TestConvertAuthorScoreRecords(t *testing.T) {
	records := []schema.AuthorScoreRecord{
		{
			RunID:      1,
			FilePath:   "pkg/main.go",
			Rank:       1,
			Name:       "Alice",
			Email:      "alice@example.com",
			Score:      3.5,
			Commits:    2,
			Lines:      12,
			Latest:     time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC),
			Earliest:   time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
			RecordedAt: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		},
	}

	rows := ConvertAuthorScoreRecords(records)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice@example.com", rows[0].Email)
	assert.Equal(t, int32(1), rows[0].Rank)
	assert.Equal(t, int32(12), rows[0].Lines)
}

func TestWriteRunsParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "runs.parquet")

	data := ConvertRunRecords(sampleRunRecords())
	require.NoError(t, WriteRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Read the file back and verify row count
	rows, err := parquet.ReadFile[RankingRun](outputPath)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWriteAuthorScoresParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "scores.parquet")

	data := []AuthorScoreRow{
		{
			RunID:      1,
			FilePath:   "pkg/main.go",
			Rank:       1,
			Name:       "Alice",
			Email:      "alice@example.com",
			Score:      3.5,
			Commits:    2,
			Lines:      12,
			Latest:     time.Now(),
			Earliest:   time.Now().Add(-time.Hour),
			RecordedAt: time.Now(),
		},
	}
	require.NoError(t, WriteAuthorScoresParquet(data, outputPath))

	rows, err := parquet.ReadFile[AuthorScoreRow](outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice@example.com", rows[0].Email)
}
