package datasource

import (
	"context"

	"github.com/datalens/datalens-engine/pkg/models"
)

// Connector extracts a dialect-independent schema from one datastore.
// Each call opens its own connection and releases it before returning.
type Connector interface {
	Dialect() Dialect

	// Extract connects with creds and returns every base table in catalog order.
	// Connection failures wrap apperrors.ErrConnection and return no tables.
	Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error)
}

// Capabilities reports which catalog signals a dialect can provide.
// ExtractSchema skips the corresponding queries when a capability is false.
type Capabilities struct {
	PrimaryKeys bool
	ForeignKeys bool
	Unique      bool
	Indexes     bool
}

// AllCapabilities is the capability set of a fully featured relational catalog.
var AllCapabilities = Capabilities{PrimaryKeys: true, ForeignKeys: true, Unique: true, Indexes: true}

// CatalogReader runs the dialect-specific catalog queries over an open connection.
// Every method returns rows for the whole target schema at once.
type CatalogReader interface {
	Capabilities() Capabilities

	// TableStats returns base tables with approximate size statistics, ordered by name.
	TableStats(ctx context.Context) ([]TableStats, error)

	// Columns returns all columns ordered by table name then ordinal position.
	Columns(ctx context.Context) ([]ColumnMetadata, error)

	PrimaryKeys(ctx context.Context) ([]ColumnKey, error)
	ForeignKeys(ctx context.Context) ([]ForeignKeyMetadata, error)
	UniqueColumns(ctx context.Context) ([]ColumnKey, error)
	IndexedColumns(ctx context.Context) ([]ColumnKey, error)
}

// Sample is a bounded set of rows read from one table. Values are normalized
// with NormalizeValue; SQL NULL is nil.
type Sample struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of sampled rows.
func (s *Sample) Len() int {
	return len(s.Rows)
}

// ColumnIndex returns the position of name in the sample, or -1.
func (s *Sample) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Values returns the column at position idx across all rows.
func (s *Sample) Values(idx int) []any {
	out := make([]any, len(s.Rows))
	for i, row := range s.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Sampler reads live rows for quality profiling. One Sampler owns one
// connection and must be closed when done.
type Sampler interface {
	// LoadSample reads at most limit rows of the given columns from table.
	// An empty column list selects every column.
	LoadSample(ctx context.Context, table string, columns []string, limit int) (*Sample, error)

	// CountOrphans counts rows of table whose non-null column value has no match
	// in refTable.refColumn.
	CountOrphans(ctx context.Context, table, column, refTable, refColumn string) (int64, error)

	Close() error
}

// LimitStyle selects how a dialect bounds the rows a query returns.
type LimitStyle int

const (
	LimitClause LimitStyle = iota // SELECT ... LIMIT n
	TopClause                     // SELECT TOP (n) ...
)

// SQLSyntax captures the dialect-specific parts of the sampling queries.
type SQLSyntax interface {
	// QuoteIdentifier safely quotes a table or column name.
	QuoteIdentifier(name string) string

	// QualifiedTable returns the quoted, schema-qualified name of table.
	QualifiedTable(table string) string

	LimitStyle() LimitStyle
}
