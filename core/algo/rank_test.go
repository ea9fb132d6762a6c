package algo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whoknows/whoknows/schema"
)

func TestRankAuthorsOrdering(t *testing.T) {
	aggs := map[string]*schema.AuthorAggregate{
		"low@example.com":  {Email: "low@example.com", Score: 1},
		"high@example.com": {Email: "high@example.com", Score: 5},
		"mid@example.com":  {Email: "mid@example.com", Score: 3},
	}
	ranked := RankAuthors(aggs, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, "high@example.com", ranked[0].Email)
	assert.Equal(t, "mid@example.com", ranked[1].Email)
	assert.Equal(t, "low@example.com", ranked[2].Email)
}

func TestRankAuthorsLimit(t *testing.T) {
	aggs := map[string]*schema.AuthorAggregate{
		"a@example.com": {Email: "a@example.com", Score: 3},
		"b@example.com": {Email: "b@example.com", Score: 2},
		"c@example.com": {Email: "c@example.com", Score: 1},
	}
	assert.Len(t, RankAuthors(aggs, 2), 2)
	assert.Len(t, RankAuthors(aggs, 10), 3)
	assert.Len(t, RankAuthors(aggs, 0), 3)
}

func TestRankAuthorsTieBreakChain(t *testing.T) {
	// Scenario C: equal scores fall through commits, then lines, then
	// latest, then email.
	t1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		a, b  schema.AuthorAggregate
		aWins bool
	}{
		{
			"commits break score tie",
			schema.AuthorAggregate{Email: "z@example.com", Score: 2, Commits: 2},
			schema.AuthorAggregate{Email: "a@example.com", Score: 2, Commits: 1},
			true,
		},
		{
			"lines break commits tie",
			schema.AuthorAggregate{Email: "z@example.com", Score: 2, Commits: 2, Lines: 20},
			schema.AuthorAggregate{Email: "a@example.com", Score: 2, Commits: 2, Lines: 10},
			true,
		},
		{
			"latest breaks lines tie",
			schema.AuthorAggregate{Email: "z@example.com", Score: 2, Commits: 2, Lines: 10, Latest: t2},
			schema.AuthorAggregate{Email: "a@example.com", Score: 2, Commits: 2, Lines: 10, Latest: t1},
			true,
		},
		{
			"email ascending is the final tiebreaker",
			schema.AuthorAggregate{Email: "a@example.com", Score: 2, Commits: 2, Lines: 10, Latest: t1},
			schema.AuthorAggregate{Email: "z@example.com", Score: 2, Commits: 2, Lines: 10, Latest: t1},
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.aWins, Less(tc.a, tc.b))
			assert.False(t, Less(tc.b, tc.a))
		})
	}
}

func TestLessIsTotalOrder(t *testing.T) {
	t1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	authors := []schema.AuthorAggregate{
		{Email: "a@example.com", Score: 2, Commits: 1, Lines: 5, Latest: t1},
		{Email: "b@example.com", Score: 2, Commits: 1, Lines: 5, Latest: t1},
		{Email: "c@example.com", Score: 2, Commits: 1, Lines: 5, Latest: t2},
		{Email: "d@example.com", Score: 3, Commits: 1, Lines: 9, Latest: t1},
		{Email: "a@example.com", Score: 2, Commits: 1, Lines: 5, Latest: t1}, // duplicate of the first
	}

	// For any pair, exactly one of {a<b, b<a, all tie-break fields equal}.
	for i, a := range authors {
		for j, b := range authors {
			ab := Less(a, b)
			ba := Less(b, a)
			equal := a.Score == b.Score && a.Commits == b.Commits &&
				a.Lines == b.Lines && a.Latest.Equal(b.Latest) && a.Email == b.Email
			if equal {
				assert.False(t, ab, "equal authors %d,%d must not order", i, j)
				assert.False(t, ba, "equal authors %d,%d must not order", i, j)
			} else {
				assert.True(t, ab != ba, "authors %d,%d must order exactly one way", i, j)
			}
		}
	}
}
