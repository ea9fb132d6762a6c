package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/schema"
)

func sampleRankings() []schema.FileRanking {
	return []schema.FileRanking{
		{
			Path: "pkg/main.go",
			Authors: []schema.AuthorAggregate{
				{
					Name:     "Alice",
					Email:    "alice@example.com",
					Commits:  2,
					Lines:    12,
					Latest:   time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC),
					Earliest: time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
					Score:    3.5,
				},
				{
					Name:     "Bob",
					Email:    "bob@example.com",
					Commits:  1,
					Lines:    12,
					Latest:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
					Earliest: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
					Score:    2.5,
				},
			},
		},
	}
}

func sampleConfig() *contract.Config {
	return &contract.Config{
		Precision: 2,
		Workers:   1,
		Width:     120,
		Output:    schema.TextOut,
	}
}

func TestWriteRankingTables(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, intFmt := createFormatters(2)

	err := writeRankingTables(sampleRankings(), sampleConfig(), fmtFloat, intFmt, time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "File: pkg/main.go")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "2020-04-10")
	assert.Contains(t, out, "Primary", "Alice holds the majority share")
	assert.Contains(t, out, "Ranked 2 authors across 1 files")
}

func TestWriteRankingTablesEmptyRanking(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, intFmt := createFormatters(2)

	rankings := []schema.FileRanking{{Path: "empty.go"}}
	err := writeRankingTables(rankings, sampleConfig(), fmtFloat, intFmt, time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "File: empty.go")
	assert.Contains(t, out, "No attribution found")
	assert.Contains(t, out, "Ranked 0 authors across 1 files")
}

func TestWriteCSVResultsForRankings(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, intFmt := createFormatters(2)

	csvWriter := csv.NewWriter(&buf)
	err := writeCSVResultsForRankings(csvWriter, sampleRankings(), fmtFloat, intFmt)
	csvWriter.Flush()
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"name", "email", "score", "commits", "lines", "latest", "earliest"}, records[0])
	assert.Equal(t, []string{"Alice", "alice@example.com", "3.50", "2", "12", "2020-04-10", "2019-02-01"}, records[1])
	assert.Equal(t, []string{"Bob", "bob@example.com", "2.50", "1", "12", "2019-01-01", "2019-01-01"}, records[2])
}

func TestWriteJSONResultsForRankings(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSONResultsForRankings(&buf, sampleRankings())
	require.NoError(t, err)

	var decoded []struct {
		Path    string `json:"path"`
		Authors []struct {
			Rank  int     `json:"rank"`
			Label string  `json:"label"`
			Share float64 `json:"share"`
			Email string  `json:"email"`
		} `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "pkg/main.go", decoded[0].Path)
	require.Len(t, decoded[0].Authors, 2)
	assert.Equal(t, 1, decoded[0].Authors[0].Rank)
	assert.Equal(t, "alice@example.com", decoded[0].Authors[0].Email)
	assert.Equal(t, schema.PrimaryValue, decoded[0].Authors[0].Label)
	assert.InDelta(t, 58.33, decoded[0].Authors[0].Share, 0.01)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(time.Time{}))
	assert.Equal(t, "2020-04-10", formatDate(time.Date(2020, 4, 10, 9, 30, 0, 0, time.UTC)))
}

func TestGetMaxIdentityWidth(t *testing.T) {
	assert.Equal(t, 30, getMaxIdentityWidth(&contract.Config{Width: 120}))
	assert.Equal(t, 12, getMaxIdentityWidth(&contract.Config{Width: 60}))
	assert.Equal(t, 40, getMaxIdentityWidth(&contract.Config{Width: 500}))
}
