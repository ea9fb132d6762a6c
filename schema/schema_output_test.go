package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		share float64
		want  string
	}{
		{100, PrimaryValue},
		{50, PrimaryValue},
		{49.9, MajorValue},
		{25, MajorValue},
		{24.9, MinorValue},
		{10, MinorValue},
		{9.9, MarginalValue},
		{0, MarginalValue},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPlainLabel(tt.share), "share %v", tt.share)
	}
}

func TestEnrichAuthors(t *testing.T) {
	authors := []AuthorAggregate{
		{Name: "Alice", Email: "alice@example.com", Score: 6},
		{Name: "Bob", Email: "bob@example.com", Score: 3},
		{Name: "Carol", Email: "carol@example.com", Score: 1},
	}

	enriched := EnrichAuthors(authors)
	require.Len(t, enriched, 3)

	assert.Equal(t, 1, enriched[0].Rank)
	assert.InDelta(t, 60.0, enriched[0].Share, 1e-9)
	assert.Equal(t, PrimaryValue, enriched[0].Label)

	assert.Equal(t, 2, enriched[1].Rank)
	assert.InDelta(t, 30.0, enriched[1].Share, 1e-9)
	assert.Equal(t, MajorValue, enriched[1].Label)

	assert.Equal(t, 3, enriched[2].Rank)
	assert.InDelta(t, 10.0, enriched[2].Share, 1e-9)
	assert.Equal(t, MinorValue, enriched[2].Label)
}

func TestEnrichAuthorsZeroTotal(t *testing.T) {
	authors := []AuthorAggregate{
		{Name: "Alice", Score: 0},
		{Name: "Bob", Score: 0},
	}

	enriched := EnrichAuthors(authors)
	require.Len(t, enriched, 2)
	for _, e := range enriched {
		assert.Zero(t, e.Share)
		assert.Equal(t, MarginalValue, e.Label)
	}
}

func TestEnrichAuthorsEmpty(t *testing.T) {
	assert.Empty(t, EnrichAuthors(nil))
}

func TestLineRangeContains(t *testing.T) {
	r := LineRange{Start: 3, End: 7}
	assert.False(t, r.Contains(2))
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(7))
	assert.False(t, r.Contains(8))
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, Weights{Commits: 1, Lines: 1, Latest: 0, Earliest: 0}, w)
}

func TestEnrichAuthorsKeepsAggregateFields(t *testing.T) {
	latest := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	authors := []AuthorAggregate{
		{Name: "Alice", Email: "alice@example.com", Commits: 4, Lines: 120, Latest: latest, Score: 5},
	}

	enriched := EnrichAuthors(authors)
	require.Len(t, enriched, 1)
	assert.Equal(t, "alice@example.com", enriched[0].Email)
	assert.Equal(t, 4, enriched[0].Commits)
	assert.Equal(t, 120, enriched[0].Lines)
	assert.Equal(t, latest, enriched[0].Latest)
}
