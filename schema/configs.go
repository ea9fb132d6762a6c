package schema

// OutputMode controls which renderer receives the ranked results.
type OutputMode string

// Supported output modes.
const (
	TextOut OutputMode = "text" // Human-readable ascii table
	CSVOut  OutputMode = "csv"  // Comma-delimited records
	JSONOut OutputMode = "json" // Enriched JSON array
)

// ValidOutputModes is the set of accepted --output values.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// DatabaseBackend selects the storage engine for the cache and run stores.
type DatabaseBackend string

// Supported database backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidDatabaseBackends is the set of accepted backend values.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Weights is the validated scoring weight vector. Each multiplier scales one
// term of the author score; all must be non-negative.
type Weights struct {
	Commits  float64 `json:"commits"`
	Lines    float64 `json:"lines"`
	Latest   float64 `json:"latest"`
	Earliest float64 `json:"earliest"`
}

// DefaultWeights returns the default weight vector: commit and line terms
// contribute, recency is opt-in.
func DefaultWeights() Weights {
	return Weights{Commits: 1, Lines: 1, Latest: 0, Earliest: 0}
}
