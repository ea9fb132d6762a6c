package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/whoknows/whoknows/schema"
)

// Color variables for console output.
var (
	PrimaryColor  = color.New(color.FgGreen, color.Bold) // Dominant knowledge holder
	MajorColor    = color.New(color.FgCyan, color.Bold)  // Substantial share
	MinorColor    = color.New(color.FgYellow)            // Noticeable share
	MarginalColor = color.New(color.FgWhite)             // Trace contributions
)

// GetColorLabel returns a colored share label for console output. It uses
// schema.GetPlainLabel to determine the string, then applies the color.
func GetColorLabel(share float64) string {
	text := schema.GetPlainLabel(share)
	switch text {
	case schema.PrimaryValue:
		return PrimaryColor.Sprint(text)
	case schema.MajorValue:
		return MajorColor.Sprint(text)
	case schema.MinorValue:
		return MinorColor.Sprint(text)
	default:
		return MarginalColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output based on
// the provided file path. Empty means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for blame cache
// storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".whoknows_cache.db"
	}
	return filepath.Join(homeDir, ".whoknows_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".whoknows_runs.db"
	}
	return filepath.Join(homeDir, ".whoknows_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for both the "..." prefix and at
// least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// MatchesAnyFilter reports whether the value contains any of the filters.
// An empty filter list matches everything.
func MatchesAnyFilter(value string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if strings.Contains(value, f) {
			return true
		}
	}
	return false
}
