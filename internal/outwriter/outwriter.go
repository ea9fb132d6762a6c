// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRankings prints per-file author rankings using the configured output format.
func (ow *OutWriter) WriteRankings(rankings []schema.FileRanking, cfg *contract.Config, duration time.Duration) error {
	return PrintFileRankings(rankings, cfg, duration)
}

// getMaxIdentityWidth calculates the maximum width for the name and email
// columns in table output based on terminal width.
func getMaxIdentityWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the numeric columns (Rank, Score, Commits, Lines,
	// Latest, Earliest, Label) with borders and padding. What is left is
	// split between the Name and Email columns.
	const baseWidth = 60
	available := (termWidth - baseWidth) / 2
	if available < 12 {
		// Minimum reasonable identity width
		return 12
	}
	if available > 40 {
		// Maximum identity width to prevent overly wide tables
		return 40
	}
	return available
}
