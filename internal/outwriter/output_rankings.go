package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintFileRankings outputs the author rankings, dispatching based on the
// output format configured.
func PrintFileRankings(rankings []schema.FileRanking, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeRankingJSONResults(rankings, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeRankingCSVResults(rankings, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTables(rankings, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeRankingJSONResults handles opening the file and calling the JSON writer.
func writeRankingJSONResults(rankings []schema.FileRanking, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForRankings(w, rankings)
	}, "Wrote JSON")
}

// writeRankingCSVResults handles opening the file and calling the CSV writer.
func writeRankingCSVResults(rankings []schema.FileRanking, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForRankings(csvWriter, rankings, fmtFloat, intFmt)
	}, "Wrote CSV")
}

// writeRankingTables generates one human-readable table per file.
func writeRankingTables(rankings []schema.FileRanking, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	identityWidth := getMaxIdentityWidth(cfg)
	totalAuthors := 0

	for _, ranking := range rankings {
		if _, err := fmt.Fprintf(writer, "File: %s\n", ranking.Path); err != nil {
			return err
		}
		if len(ranking.Authors) == 0 {
			if _, err := fmt.Fprintln(writer, "No attribution found"); err != nil {
				return err
			}
			continue
		}
		totalAuthors += len(ranking.Authors)

		table := tablewriter.NewWriter(writer)
		table.Header([]string{"Rank", "Name", "Email", "Score", "Commits", "Lines", "Latest", "Earliest", "Label"})
		table.Configure(func(tblCfg *tablewriter.Config) {
			tblCfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, e := range schema.EnrichAuthors(ranking.Authors) {
			label := e.Label
			if cfg.UseColors {
				label = contract.GetColorLabel(e.Share)
			}
			data = append(data, []string{
				strconv.Itoa(e.Rank),
				contract.TruncatePath(e.Name, identityWidth),
				contract.TruncatePath(e.Email, identityWidth),
				fmtFloat(e.Score),
				fmt.Sprintf(intFmt, e.Commits),
				fmt.Sprintf(intFmt, e.Lines),
				formatDate(e.Latest),
				formatDate(e.Earliest),
				label,
			})
		}

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(writer, "Ranked %d authors across %d files\n", totalAuthors, len(rankings)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForRankings writes the rankings in CSV format. The column
// set is fixed: name, email, score, commits, lines, latest, earliest.
func writeCSVResultsForRankings(w *csv.Writer, rankings []schema.FileRanking, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"name",
		"email",
		"score",
		"commits",
		"lines",
		"latest",
		"earliest",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, ranking := range rankings {
		for _, a := range ranking.Authors {
			rec := []string{
				a.Name,
				a.Email,
				fmtFloat(a.Score),
				fmt.Sprintf(intFmt, a.Commits),
				fmt.Sprintf(intFmt, a.Lines),
				formatDate(a.Latest),
				formatDate(a.Earliest),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeJSONResultsForRankings writes the rankings in JSON format with rank
// and label added per author.
func writeJSONResultsForRankings(w io.Writer, rankings []schema.FileRanking) error {
	type JSONFileRanking struct {
		Path    string                        `json:"path"`
		Authors []schema.EnrichedAuthorResult `json:"authors"`
	}

	output := make([]JSONFileRanking, len(rankings))
	for i, r := range rankings {
		output[i] = JSONFileRanking{
			Path:    r.Path,
			Authors: schema.EnrichAuthors(r.Authors),
		}
	}

	return writeJSON(w, output)
}
