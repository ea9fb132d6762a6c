package algo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/schema"
)

var scoreNow = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

// scenarioAggs is a small two-author aggregation: alice with two
// commits over two hunks (12 lines), bob with one commit in one hunk
// (12 lines). Average hunk size is 24/3 = 8.
func scenarioAggs() map[string]*schema.AuthorAggregate {
	return map[string]*schema.AuthorAggregate{
		"alice@example.com": {
			Name: "Alice", Email: "alice@example.com",
			Commits: 2, Lines: 12, Hunks: 2,
			Latest:   time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC),
			Earliest: time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		"bob@example.com": {
			Name: "Bob", Email: "bob@example.com",
			Commits: 1, Lines: 12, Hunks: 1,
			Latest:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			Earliest: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestScoreAuthorsDefaultWeights(t *testing.T) {
	aggs := scenarioAggs()
	ScoreAuthors(aggs, schema.DefaultWeights(), scoreNow)

	// Equal line terms (12/8 each), so alice leads on the commit term alone.
	assert.InDelta(t, 2+1.5, aggs["alice@example.com"].Score, 1e-9)
	assert.InDelta(t, 1+1.5, aggs["bob@example.com"].Score, 1e-9)
}

func TestScoreAuthorsDecayTerms(t *testing.T) {
	latest := scoreNow.Add(-24 * time.Hour)
	aggs := map[string]*schema.AuthorAggregate{
		"a@example.com": {Email: "a@example.com", Lines: 4, Hunks: 1, Latest: latest, Earliest: latest},
	}
	ScoreAuthors(aggs, schema.Weights{Latest: 1}, scoreNow)
	assert.InDelta(t, 0.5, aggs["a@example.com"].Score, 1e-9, "one day ago decays to 1/2")

	// A timestamp at now contributes the full term.
	aggs["a@example.com"].Latest = scoreNow
	ScoreAuthors(aggs, schema.Weights{Latest: 1}, scoreNow)
	assert.InDelta(t, 1.0, aggs["a@example.com"].Score, 1e-9)
}

func TestScoreAuthorsWeightScalingKeepsRanking(t *testing.T) {
	base := scenarioAggs()
	scaled := scenarioAggs()

	w := schema.Weights{Commits: 1, Lines: 2, Latest: 0.5, Earliest: 0.25}
	ScoreAuthors(base, w, scoreNow)
	const k = 7.0
	ScoreAuthors(scaled, schema.Weights{Commits: w.Commits * k, Lines: w.Lines * k, Latest: w.Latest * k, Earliest: w.Earliest * k}, scoreNow)

	for email := range base {
		assert.InDelta(t, base[email].Score*k, scaled[email].Score, 1e-9)
	}
	assert.Equal(t,
		RankAuthors(base, 0)[0].Email,
		RankAuthors(scaled, 0)[0].Email,
		"uniform weight scaling must not change the ranking")
}

func TestScoreAuthorsZeroWeightIgnoresField(t *testing.T) {
	aggs := map[string]*schema.AuthorAggregate{
		"few@example.com":  {Email: "few@example.com", Commits: 3, Lines: 1, Hunks: 1},
		"many@example.com": {Email: "many@example.com", Commits: 3, Lines: 100, Hunks: 1},
	}
	ScoreAuthors(aggs, schema.Weights{Commits: 1, Lines: 0}, scoreNow)
	assert.Equal(t, aggs["few@example.com"].Score, aggs["many@example.com"].Score)
}

func TestScoreAuthorsNoLines(t *testing.T) {
	aggs := map[string]*schema.AuthorAggregate{
		"a@example.com": {Email: "a@example.com", Commits: 2, Lines: 0, Hunks: 0},
	}
	ScoreAuthors(aggs, schema.DefaultWeights(), scoreNow)
	assert.InDelta(t, 2.0, aggs["a@example.com"].Score, 1e-9, "lines term is 0 when no author has lines")
}

func TestScoreAuthorsLinesNormalization(t *testing.T) {
	// Three hunks of 30 lines total: average hunk size 10, so a 20-line
	// author lands at exactly 2.0 on the lines term.
	aggs := map[string]*schema.AuthorAggregate{
		"a@example.com": {Email: "a@example.com", Lines: 20, Hunks: 2},
		"b@example.com": {Email: "b@example.com", Lines: 10, Hunks: 1},
	}
	ScoreAuthors(aggs, schema.Weights{Lines: 1}, scoreNow)
	require.InDelta(t, 2.0, aggs["a@example.com"].Score, 1e-9)
	require.InDelta(t, 1.0, aggs["b@example.com"].Score, 1e-9)
}
