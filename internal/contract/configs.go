package contract

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/whoknows/whoknows/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
)

// CacheGranularity aligns cache timestamps so entries written within the
// same window share a key.
const CacheGranularity = time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormat is the calendar date representation used in output.
const DateFormat = time.DateOnly

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig populates the profiling config from the flag value.
func ProcessProfilingConfig(profile *ProfileConfig, prefix string) error {
	profile.Prefix = strings.TrimSpace(prefix)
	profile.Enabled = profile.Prefix != ""
	if profile.Enabled && strings.ContainsAny(profile.Prefix, "*?") {
		return fmt.Errorf("profile prefix %q must be a plain file prefix", prefix)
	}
	return nil
}

// WeightsRawInput holds weight overrides from the YAML config file. Pointer
// fields distinguish "absent" from "explicitly zero": absent keys inherit the
// defaults, present keys replace them.
type WeightsRawInput struct {
	Commits  *float64 `mapstructure:"commits"`
	Lines    *float64 `mapstructure:"lines"`
	Latest   *float64 `mapstructure:"latest"`
	Earliest *float64 `mapstructure:"earliest"`
}

// Config holds the runtime configuration for one invocation.
// This struct is the final, validated config.
type Config struct {
	RepoPath string   // Absolute path to the repository root
	Files    []string // Repo-relative paths of the files to analyze

	LineRanges []schema.LineRange
	Weights    schema.Weights

	ResultLimit int
	Workers     int
	Output      schema.OutputMode
	OutputFile  string
	Precision   int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	Summary      bool
	EmailFilters []string
	NameFilters  []string

	// IdentityKey maps emails to author keys before aggregation. Nil means
	// the exact email is the key; this is the identity-merging hook.
	IdentityKey IdentityKeyFunc

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// Set manually from positional args, so no tag
	FilePaths []string

	Limit          int      `mapstructure:"limit"`
	Workers        int      `mapstructure:"workers"`
	Output         string   `mapstructure:"output"`
	OutputFile     string   `mapstructure:"output-file"`
	Precision      int      `mapstructure:"precision"`
	Width          int      `mapstructure:"width"`
	Color          string   `mapstructure:"color"`
	Table          bool     `mapstructure:"table"`
	NoTable        bool     `mapstructure:"no-table"`
	WeightStr      string   `mapstructure:"weight"`
	LineRanges     []string `mapstructure:"line-range"`
	Summary        bool     `mapstructure:"summary"`
	FilterEmail    []string `mapstructure:"filter-email"`
	FilterName     []string `mapstructure:"filter-name"`
	CacheBackend   string   `mapstructure:"cache-backend"`
	CacheDBConnect string   `mapstructure:"cache-db-connect"`
	RunsBackend    string   `mapstructure:"runs-backend"`
	RunsDBConnect  string   `mapstructure:"runs-db-connect"`

	// Weight overrides from the config file
	Weights WeightsRawInput `mapstructure:"weights"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct. Weight validation runs before any
// record is touched, so a malformed spec never produces partial output.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processLineRanges(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveRepoFiles(ctx, cfg, client, input)
}

// ParseWeightSpec parses a --weight value of up to four comma-separated
// non-negative reals in the order commits,lines,latest,earliest. Missing
// trailing values default to 0; an empty spec returns the defaults.
func ParseWeightSpec(s string) (schema.Weights, error) {
	if strings.TrimSpace(s) == "" {
		return schema.DefaultWeights(), nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > 4 {
		return schema.Weights{}, fmt.Errorf("%w: expected at most four comma-separated values, got %d", schema.ErrInvalidWeight, len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return schema.Weights{}, fmt.Errorf("%w: %q is not a number", schema.ErrInvalidWeight, strings.TrimSpace(p))
		}
		if v < 0 {
			return schema.Weights{}, fmt.Errorf("%w: weight %q must be non-negative", schema.ErrInvalidWeight, strings.TrimSpace(p))
		}
		vals[i] = v
	}
	return schema.Weights{Commits: vals[0], Lines: vals[1], Latest: vals[2], Earliest: vals[3]}, nil
}

// ParseLineRange parses one -L value of the form <start>-<end> (inclusive,
// 1-based).
func ParseLineRange(s string) (schema.LineRange, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return schema.LineRange{}, fmt.Errorf("invalid line range %q: expected <start>-<end>", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return schema.LineRange{}, fmt.Errorf("invalid line range %q: start %q is not an integer", s, parts[0])
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return schema.LineRange{}, fmt.Errorf("invalid line range %q: end %q is not an integer", s, parts[1])
	}
	if start < 1 {
		return schema.LineRange{}, fmt.Errorf("invalid line range %q: start must be at least 1", s)
	}
	if end < start {
		return schema.LineRange{}, fmt.Errorf("invalid line range %q: end must not precede start", s)
	}
	return schema.LineRange{Start: start, End: end}, nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Summary = input.Summary
	cfg.EmailFilters = trimmedNonEmpty(input.FilterEmail)
	cfg.NameFilters = trimmedNonEmpty(input.FilterName)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	// --table / --no-table pick the formatter directly and win over
	// --output; setting both is contradictory.
	if input.Table && input.NoTable {
		return fmt.Errorf("--table and --no-table are mutually exclusive")
	}
	switch {
	case input.Table:
		cfg.Output = schema.TextOut
	case input.NoTable:
		cfg.Output = schema.CSVOut
	default:
		cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
		if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
			return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
		}
	}

	return nil
}

// processWeights resolves the final weight vector: defaults, then config-file
// overrides, then the --weight flag value which replaces the vector wholesale.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	if input.WeightStr != "" {
		w, err := ParseWeightSpec(input.WeightStr)
		if err != nil {
			return err
		}
		cfg.Weights = w
		return nil
	}

	w := schema.DefaultWeights()
	for _, o := range []struct {
		value *float64
		dst   *float64
		name  string
	}{
		{input.Weights.Commits, &w.Commits, "commits"},
		{input.Weights.Lines, &w.Lines, "lines"},
		{input.Weights.Latest, &w.Latest, "latest"},
		{input.Weights.Earliest, &w.Earliest, "earliest"},
	} {
		if o.value == nil {
			continue
		}
		if *o.value < 0 {
			return fmt.Errorf("%w: weights.%s must be non-negative", schema.ErrInvalidWeight, o.name)
		}
		*o.dst = *o.value
	}
	cfg.Weights = w
	return nil
}

// processLineRanges parses and validates the -L filters.
func processLineRanges(cfg *Config, input *ConfigRawInput) error {
	if len(input.LineRanges) == 0 {
		return nil
	}
	if len(input.FilePaths) > 1 {
		return fmt.Errorf("-L line filters require exactly one file (received %d)", len(input.FilePaths))
	}
	if input.Summary {
		return fmt.Errorf("-L line filters cannot be combined with --summary")
	}
	cfg.LineRanges = make([]schema.LineRange, 0, len(input.LineRanges))
	for _, s := range input.LineRanges {
		r, err := ParseLineRange(s)
		if err != nil {
			return err
		}
		cfg.LineRanges = append(cfg.LineRanges, r)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run-store backend settings.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Cache and run tracking must not share one SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run tracking must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// resolveRepoFiles resolves the positional file paths against a single
// repository root and stores repo-relative paths.
func resolveRepoFiles(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if len(input.FilePaths) == 0 {
		return fmt.Errorf("at least one file path is required")
	}

	for _, p := range input.FilePaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("cannot resolve path %q: %w", p, err)
		}

		root, err := client.GetRepoRoot(ctx, filepath.Dir(abs))
		if err != nil {
			return fmt.Errorf("cannot locate repository for %q: %w", p, err)
		}
		if cfg.RepoPath == "" {
			cfg.RepoPath = root
		} else if cfg.RepoPath != root {
			return fmt.Errorf("all files must belong to one repository: %q is in %q, expected %q", p, root, cfg.RepoPath)
		}

		rel, err := filepath.Rel(cfg.RepoPath, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("path %q is outside repository %q", p, cfg.RepoPath)
		}
		cfg.Files = append(cfg.Files, filepath.ToSlash(rel))
	}

	return nil
}

// trimmedNonEmpty trims the values and drops empty entries.
func trimmedNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
