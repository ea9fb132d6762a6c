// Package schema has configs, models and shared vocabulary for all parts of whoknows.
package schema

import "time"

// AttributionRecord is one contiguous blame hunk for the target file:
// the author identity, originating commit, and the line span it covers.
type AttributionRecord struct {
	AuthorName  string    // Display name as recorded on the commit
	AuthorEmail string    // Canonical author key, case-sensitive
	CommitID    string    // Opaque commit identifier used for distinct-commit counting
	CommitTime  time.Time // Author timestamp of the originating commit
	StartLine   int       // First line covered by the hunk, 1-based
	LineCount   int       // Number of lines covered, always > 0 for a valid record
}

// LineRange is an inclusive [Start, End] line filter.
type LineRange struct {
	Start int
	End   int
}

// Contains reports whether the given line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// AuthorAggregate is the per-author rollup derived from attribution records.
// It is built in a single aggregation pass, then frozen and scored.
type AuthorAggregate struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Commits  int       `json:"commits"`
	Lines    int       `json:"lines"`
	Hunks    int       `json:"hunks"`
	Latest   time.Time `json:"latest"`
	Earliest time.Time `json:"earliest"`
	Score    float64   `json:"score"`
}

// FileRanking is the ordered result for a single analyzed file.
type FileRanking struct {
	Path    string            `json:"path"`
	Authors []AuthorAggregate `json:"authors"`
}
