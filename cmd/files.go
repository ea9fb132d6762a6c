package cmd

import (
	"github.com/spf13/cobra"
	"github.com/whoknows/whoknows/core"
	"github.com/whoknows/whoknows/internal/contract"
)

// filesCmd ranks the authors who know each file best.
var filesCmd = &cobra.Command{
	Use:   "files <path>...",
	Short: "Rank the authors who know each file best.",
	Long: `Turn git blame attribution into a ranked author list per file.

Every line of each file is attributed to the commit that last touched it,
then rolled up per author and scored with a weighted formula over commit
count, line ownership, and recency.

Use this to:
- Find the right reviewer for a change
- Locate the person to ask about unfamiliar code
- Spot knowledge silos where one author owns everything
- Track ownership drift over time with run tracking enabled

Examples:
  # Who knows this file?
  whoknows files pkg/parser/parser.go

  # Rank several files at once
  whoknows files cmd/root.go internal/server.go

  # Only count a line range (single file)
  whoknows files -L 100-250 pkg/parser/parser.go

  # Emphasize recent activity
  whoknows files --weight 1,1,2,0 pkg/parser/parser.go

  # One combined ranking across files
  whoknows files --summary internal/*.go

  # Export findings to CSV
  whoknows files --output csv --output-file owners.csv pkg/parser/parser.go`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRankFiles(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot rank files", err)
		}
	},
}
