package algo

import (
	"sort"

	"github.com/whoknows/whoknows/schema"
)

// Less reports whether author a ranks strictly before author b. The order is
// total: score descending, then commits, lines and latest descending, with
// email ascending as the final deterministic tiebreaker. Scores compare at
// full precision; rounding applies only at display time.
func Less(a, b schema.AuthorAggregate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Commits != b.Commits {
		return a.Commits > b.Commits
	}
	if a.Lines != b.Lines {
		return a.Lines > b.Lines
	}
	if !a.Latest.Equal(b.Latest) {
		return a.Latest.After(b.Latest)
	}
	return a.Email < b.Email
}

// RankAuthors orders the scored aggregates and returns the top limit
// entries. A limit of 0 or less returns all authors in sorted order.
func RankAuthors(aggs map[string]*schema.AuthorAggregate, limit int) []schema.AuthorAggregate {
	authors := make([]schema.AuthorAggregate, 0, len(aggs))
	for _, a := range aggs {
		authors = append(authors, *a)
	}
	sort.Slice(authors, func(i, j int) bool { return Less(authors[i], authors[j]) })
	if limit > 0 && len(authors) > limit {
		authors = authors[:limit]
	}
	return authors
}
