package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/whoknows/whoknows/internal/contract"
	"github.com/whoknows/whoknows/internal/iocache"
	"github.com/whoknows/whoknows/schema"
)

// runsSetup loads minimal configuration needed for run-tracking operations.
// This is used by commands that need the run store without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get run-tracking config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize only the run store (no blame caching for runs commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsCmd focused on ranking-run tracking management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage historical ranking runs (trend tracking)",
	Long: `Manage the store that tracks every ranking run and its results.

When a runs backend is configured, whoknows records each invocation along
with the full ranked author list per file. Over time this builds a history
of ownership that can be exported and analyzed.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run statistics and connection info
  clear   - Remove all tracked runs
  export  - Export runs and author scores to Parquet
  migrate - Apply database schema migrations

Examples:
  # Enable tracking for a ranking
  whoknows files --runs-backend sqlite pkg/parser/parser.go

  # Check what has accumulated
  whoknows runs status`,
}

// runsClearCmd clears the run-tracking data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked ranking runs",
	Long: `Delete all tracked runs and their ranked author rows.

This removes:
- All run metadata (start/end times, parameters)
- Every persisted ranked-author row

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  whoknows runs export --output-file backup.parquet
  whoknows runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run-tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about historical run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total files ranked across all runs
- Database table sizes

Examples:
  # Check run tracking status
  whoknows runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunsStatus(status)
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all tracked run data to Parquet format for analytics tools.

Exports two datasets:
- Ranking runs - metadata about each invocation
- Author scores - the full ranked author list per file per run

Requires: --output-file parameter

Examples:
  # Export all data
  whoknows runs export --output-file whoknows-data.parquet

  # Use with DuckDB for analysis
  whoknows runs export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  whoknows runs migrate

  # Migrate to specific version
  whoknows runs migrate --target-version 1

  # Rollback everything
  whoknows runs migrate --target-version 0`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
