// Package agg has the aggregation pass that turns attribution records into
// per-author rollups.
package agg

import (
	"fmt"
	"sort"

	"github.com/whoknows/whoknows/schema"
)

// Aggregate groups attribution records by author email and accumulates the
// distinct-commit count, counted line total, and the [earliest, latest]
// activity interval per author.
//
// When line filters are supplied, a record contributes only the portion of
// its span that intersects the filters; records with zero intersection are
// dropped entirely and do not contribute a commit. Filters are normalized
// (sorted, merged) first so a hunk spanning several ranges is never counted
// twice.
//
// All records are validated before any aggregation result is returned, so a
// malformed record never yields a partial rollup.
func Aggregate(records []schema.AttributionRecord, filters []schema.LineRange) (map[string]*schema.AuthorAggregate, error) {
	if len(records) == 0 {
		return nil, schema.ErrEmptyInput
	}

	for i, r := range records {
		if r.LineCount <= 0 {
			return nil, fmt.Errorf("%w: record %d has line count %d", schema.ErrInvalidRecord, i, r.LineCount)
		}
		if r.StartLine < 1 {
			return nil, fmt.Errorf("%w: record %d has start line %d", schema.ErrInvalidRecord, i, r.StartLine)
		}
	}

	ranges := normalizeRanges(filters)

	// Commit sets are kept alongside each aggregate during the pass so one
	// commit touching many scattered hunks still counts once.
	type accumulator struct {
		agg     *schema.AuthorAggregate
		commits map[string]struct{}
	}
	accs := make(map[string]*accumulator)

	for _, r := range records {
		counted := r.LineCount
		if len(ranges) > 0 {
			counted = intersectCount(r.StartLine, r.LineCount, ranges)
			if counted == 0 {
				continue
			}
		}

		acc, ok := accs[r.AuthorEmail]
		if !ok {
			acc = &accumulator{
				agg: &schema.AuthorAggregate{
					Name:     r.AuthorName,
					Email:    r.AuthorEmail,
					Latest:   r.CommitTime,
					Earliest: r.CommitTime,
				},
				commits: make(map[string]struct{}),
			}
			accs[r.AuthorEmail] = acc
		}

		// Display name follows the most recent record for the author.
		if !r.CommitTime.Before(acc.agg.Latest) {
			acc.agg.Latest = r.CommitTime
			acc.agg.Name = r.AuthorName
		}
		if r.CommitTime.Before(acc.agg.Earliest) {
			acc.agg.Earliest = r.CommitTime
		}

		acc.agg.Lines += counted
		acc.agg.Hunks++
		acc.commits[r.CommitID] = struct{}{}
	}

	out := make(map[string]*schema.AuthorAggregate, len(accs))
	for email, acc := range accs {
		acc.agg.Commits = len(acc.commits)
		out[email] = acc.agg
	}
	return out, nil
}

// normalizeRanges sorts the filters and merges overlapping or adjacent ones,
// producing disjoint ranges in ascending order. Ranges with End < Start are
// discarded.
func normalizeRanges(filters []schema.LineRange) []schema.LineRange {
	valid := make([]schema.LineRange, 0, len(filters))
	for _, r := range filters {
		if r.End >= r.Start {
			valid = append(valid, r)
		}
	}
	if len(valid) < 2 {
		return valid
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Start < valid[j].Start })

	merged := valid[:1]
	for _, r := range valid[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// intersectCount returns how many lines of the hunk [start, start+count-1]
// fall inside the given disjoint ranges.
func intersectCount(start, count int, ranges []schema.LineRange) int {
	end := start + count - 1
	total := 0
	for _, r := range ranges {
		lo := max(start, r.Start)
		hi := min(end, r.End)
		if hi >= lo {
			total += hi - lo + 1
		}
	}
	return total
}
