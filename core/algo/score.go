// Package algo has the scoring and ranking logic for author aggregates.
package algo

import (
	"time"

	"github.com/whoknows/whoknows/schema"
)

// ScoreAuthors computes the weighted score for every aggregate in place.
//
// Term normalization keeps disparate units comparable:
//   - commits term: raw distinct-commit count
//   - lines term: line count divided by the file-wide average hunk size over
//     the counted records, so the term is dimensionless; 0 when no lines
//   - latest/earliest terms: 1 / (1 + days since), in (0, 1], so recent
//     activity contributes more
//
// The caller supplies now so the result is a pure function of its inputs.
func ScoreAuthors(aggs map[string]*schema.AuthorAggregate, w schema.Weights, now time.Time) {
	var totalLines, totalHunks int
	for _, a := range aggs {
		totalLines += a.Lines
		totalHunks += a.Hunks
	}

	var avgHunkSize float64
	if totalHunks > 0 && totalLines > 0 {
		avgHunkSize = float64(totalLines) / float64(totalHunks)
	}

	for _, a := range aggs {
		var linesTerm float64
		if avgHunkSize > 0 {
			linesTerm = float64(a.Lines) / avgHunkSize
		}
		a.Score = w.Commits*float64(a.Commits) +
			w.Lines*linesTerm +
			w.Latest*decayTerm(now, a.Latest) +
			w.Earliest*decayTerm(now, a.Earliest)
	}
}

// decayTerm maps a timestamp to 1/(1+days_since), clamping future
// timestamps to a full contribution of 1.
func decayTerm(now, t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	days := now.Sub(t).Hours() / 24
	if days < 0 {
		days = 0
	}
	return 1 / (1 + days)
}
