package schema

// Custom string types for type safety.
type (
	// LineKind classifies a single line inside a parsed hunk.
	LineKind string

	// RowKind classifies a side-by-side diff row.
	RowKind string

	// PatchStatus is the per-file status reported by the source API.
	PatchStatus string

	// PRState is the state of a pull request.
	PRState string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All line kinds produced by the patch parser.
const (
	HeaderLine  LineKind = "header"
	ContextLine LineKind = "context"
	AddLine     LineKind = "add"
	DeleteLine  LineKind = "delete"
)

// All row kinds produced by the row projector.
const (
	MetaRow    RowKind = "meta"
	ContextRow RowKind = "context"
	DeleteRow  RowKind = "delete"
	AddRow     RowKind = "add"
)

// All patch statuses reported for a commit file.
const (
	AddedStatus    PatchStatus = "added"
	ModifiedStatus PatchStatus = "modified"
	RemovedStatus  PatchStatus = "removed"
	RenamedStatus  PatchStatus = "renamed"
)

// UnknownAuthor groups pull requests whose author account is gone.
const UnknownAuthor = "unknown"

// Pull request states that are counted.
const (
	OpenState   PRState = "open"
	ClosedState PRState = "closed"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Reference values for the caller policies of the dashboard.
const (
	DefaultChurnCommits  = 80
	DefaultTopFiles      = 15
	DefaultRiskyFiles    = 10
	DefaultHeatmapDays   = 90
	DefaultBranchCap     = 30
	DefaultBranchPage    = 30
	DefaultTopAuthors    = 6
	DefaultCommitListing = 100
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
