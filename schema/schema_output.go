package schema

// EnrichedAuthorResult adds presentation data to an AuthorAggregate.
type EnrichedAuthorResult struct {
	Rank  int     `json:"rank"`
	Label string  `json:"label"`
	Share float64 `json:"share"` // Percentage of the file's total score
	AuthorAggregate
}

// Share label values.
const (
	PrimaryValue  = "Primary"
	MajorValue    = "Major"
	MinorValue    = "Minor"
	MarginalValue = "Marginal"
)

// GetPlainLabel returns a plain text label for an author's share of the
// file's total score, expressed as a percentage.
func GetPlainLabel(share float64) string {
	switch {
	case share >= 50:
		return PrimaryValue
	case share >= 25:
		return MajorValue
	case share >= 10:
		return MinorValue
	default:
		return MarginalValue
	}
}

// EnrichAuthors adds rank, share and label to an ordered list of scored
// authors. Shares are relative to the sum of all scores in the list; when
// every score is zero the share is zero for all.
func EnrichAuthors(authors []AuthorAggregate) []EnrichedAuthorResult {
	var total float64
	for _, a := range authors {
		total += a.Score
	}

	output := make([]EnrichedAuthorResult, len(authors))
	for i, a := range authors {
		var share float64
		if total > 0 {
			share = a.Score / total * 100
		}
		output[i] = EnrichedAuthorResult{
			Rank:            i + 1,
			Label:           GetPlainLabel(share),
			Share:           share,
			AuthorAggregate: a,
		}
	}
	return output
}
