package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
)

// CatalogReader reads information_schema for one MySQL database.
type CatalogReader struct {
	db       *sql.DB
	database string
}

func NewCatalogReader(db *sql.DB, database string) *CatalogReader {
	return &CatalogReader{db: db, database: database}
}

func (r *CatalogReader) Capabilities() datasource.Capabilities {
	return datasource.AllCapabilities
}

const tableStatsQuery = `
	SELECT
		table_name,
		COALESCE(table_rows, 0) AS row_count,
		COALESCE(data_length + index_length, 0) AS size_bytes,
		update_time
	FROM information_schema.TABLES
	WHERE table_schema = ? AND table_type = 'BASE TABLE'
	ORDER BY table_name
	`

// TableStats reports InnoDB's estimated row count and data plus index length.
// update_time is NULL for tables InnoDB has not touched since restart.
func (r *CatalogReader) TableStats(ctx context.Context) ([]datasource.TableStats, error) {
	rows, err := r.db.QueryContext(ctx, tableStatsQuery, r.database)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableStats
	for rows.Next() {
		var t datasource.TableStats
		var updated sql.NullTime
		if err := rows.Scan(&t.TableName, &t.RowCount, &t.SizeBytes, &updated); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		if updated.Valid {
			t.LastModified = datasource.TimeValue(updated.Time)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

const columnsQuery = `
	SELECT
		table_name,
		column_name,
		data_type,
		is_nullable = 'YES',
		column_default,
		ordinal_position
	FROM information_schema.COLUMNS
	WHERE table_schema = ?
	ORDER BY table_name, ordinal_position
	`

func (r *CatalogReader) Columns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	rows, err := r.db.QueryContext(ctx, columnsQuery, r.database)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		var def sql.NullString
		if err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType, &c.IsNullable, &def, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if def.Valid {
			c.DefaultValue = datasource.DefaultValueString(def.String)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// columnKeyQuery selects columns by their COLUMN_KEY classification:
// PRI for primary key members, UNI for single-column unique keys and MUL
// for the leading column of a non-unique index.
const columnKeyQuery = `
	SELECT table_name, column_name
	FROM information_schema.COLUMNS
	WHERE table_schema = ? AND column_key IN (%s)
	ORDER BY table_name, ordinal_position
	`

func (r *CatalogReader) PrimaryKeys(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.columnKeys(ctx, fmt.Sprintf(columnKeyQuery, "'PRI'"))
}

func (r *CatalogReader) UniqueColumns(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.columnKeys(ctx, fmt.Sprintf(columnKeyQuery, "'UNI'"))
}

func (r *CatalogReader) IndexedColumns(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.columnKeys(ctx, fmt.Sprintf(columnKeyQuery, "'PRI', 'UNI', 'MUL'"))
}

func (r *CatalogReader) columnKeys(ctx context.Context, query string) ([]datasource.ColumnKey, error) {
	rows, err := r.db.QueryContext(ctx, query, r.database)
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

const foreignKeysQuery = `
	SELECT
		kcu.constraint_name,
		kcu.table_name,
		kcu.column_name,
		kcu.referenced_table_name,
		kcu.referenced_column_name
	FROM information_schema.KEY_COLUMN_USAGE kcu
	JOIN information_schema.TABLE_CONSTRAINTS tc
	  ON tc.constraint_name = kcu.constraint_name
	  AND tc.table_schema = kcu.table_schema
	  AND tc.table_name = kcu.table_name
	WHERE kcu.table_schema = ?
	  AND tc.constraint_type = 'FOREIGN KEY'
	ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`

func (r *CatalogReader) ForeignKeys(ctx context.Context) ([]datasource.ForeignKeyMetadata, error) {
	rows, err := r.db.QueryContext(ctx, foreignKeysQuery, r.database)
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
