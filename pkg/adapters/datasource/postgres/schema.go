package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
)

// querier is satisfied by *pgx.Conn and *pgxpool.Pool.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CatalogReader reads the PostgreSQL catalog of one schema.
type CatalogReader struct {
	db     querier
	schema string
}

// NewCatalogReader creates a reader for schemaName over db.
func NewCatalogReader(db querier, schemaName string) *CatalogReader {
	if schemaName == "" {
		schemaName = DefaultSchema()
	}
	return &CatalogReader{db: db, schema: schemaName}
}

func (r *CatalogReader) Capabilities() datasource.Capabilities {
	return datasource.AllCapabilities
}

// TableStats uses live-tuple estimates and pg_total_relation_size; lastModified
// is the last ANALYZE time.
func (r *CatalogReader) TableStats(ctx context.Context) ([]datasource.TableStats, error) {
	const query = `
		SELECT
			t.table_name::text,
			COALESCE(s.n_live_tup, 0)::bigint AS row_count,
			COALESCE(pg_total_relation_size((quote_ident(t.table_schema) || '.' || quote_ident(t.table_name))::regclass), 0)::bigint AS size_bytes,
			s.last_analyze
		FROM information_schema.tables t
		LEFT JOIN pg_stat_user_tables s
		  ON s.relname = t.table_name AND s.schemaname = t.table_schema
		WHERE t.table_schema = $1
		  AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableStats
	for rows.Next() {
		var t datasource.TableStats
		var lastAnalyze *time.Time
		if err := rows.Scan(&t.TableName, &t.RowCount, &t.SizeBytes, &lastAnalyze); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.LastModified = datasource.TimeValue(lastAnalyze)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (r *CatalogReader) Columns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT
			c.table_name::text,
			c.column_name::text,
			c.data_type::text,
			c.is_nullable::text = 'YES',
			c.column_default::text,
			c.ordinal_position::int
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		var def *string
		if err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType, &c.IsNullable, &def, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.DefaultValue = datasource.DefaultValueString(def)
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

func (r *CatalogReader) PrimaryKeys(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.constraintColumns(ctx, "PRIMARY KEY")
}

func (r *CatalogReader) UniqueColumns(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.constraintColumns(ctx, "UNIQUE")
}

func (r *CatalogReader) constraintColumns(ctx context.Context, constraintType string) ([]datasource.ColumnKey, error) {
	const query = `
		SELECT kcu.table_name::text, kcu.column_name::text
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = $2
		  AND tc.table_schema = $1
		ORDER BY kcu.table_name, kcu.ordinal_position
	`
	return r.columnKeys(ctx, query, r.schema, constraintType)
}

// IndexedColumns returns every column that takes part in any index.
func (r *CatalogReader) IndexedColumns(ctx context.Context) ([]datasource.ColumnKey, error) {
	const query = `
		SELECT DISTINCT t.relname::text, a.attname::text
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE n.nspname = $1
		  AND t.relkind = 'r'
	`
	return r.columnKeys(ctx, query, r.schema)
}

func (r *CatalogReader) columnKeys(ctx context.Context, query string, args ...any) ([]datasource.ColumnKey, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []datasource.ColumnKey
	for rows.Next() {
		var k datasource.ColumnKey
		if err := rows.Scan(&k.TableName, &k.ColumnName); err != nil {
			return nil, fmt.Errorf("scan column key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *CatalogReader) ForeignKeys(ctx context.Context) ([]datasource.ForeignKeyMetadata, error) {
	const query = `
		SELECT
			tc.constraint_name::text,
			kcu.table_name::text,
			kcu.column_name::text,
			ccu.table_name::text AS foreign_table_name,
			ccu.column_name::text AS foreign_column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		  AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1
		ORDER BY kcu.table_name, tc.constraint_name, kcu.ordinal_position
	`

	rows, err := r.db.Query(ctx, query, r.schema)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	for rows.Next() {
		var fk datasource.ForeignKeyMetadata
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceTable, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return fks, nil
}

var _ datasource.CatalogReader = (*CatalogReader)(nil)
