package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
)

// CatalogReader reads the sys.* catalog views of one SQL Server schema.
type CatalogReader struct {
	db     *sql.DB
	schema string
}

// NewCatalogReader creates a reader for schemaName (dbo when empty).
func NewCatalogReader(db *sql.DB, schemaName string) *CatalogReader {
	if schemaName == "" {
		schemaName = DefaultSchema()
	}
	return &CatalogReader{db: db, schema: schemaName}
}

func (r *CatalogReader) Capabilities() datasource.Capabilities {
	return datasource.AllCapabilities
}

const tableStatsQuery = `
	SET NOCOUNT ON;
	SELECT
	    t.name AS table_name,
	    CAST(COALESCE((
	        SELECT SUM(p.rows) FROM sys.partitions p
	        WHERE p.object_id = t.object_id AND p.index_id IN (0, 1)
	    ), 0) AS BIGINT) AS row_count,
	    CAST(COALESCE((
	        SELECT SUM(a.total_pages) FROM sys.partitions p
	        INNER JOIN sys.allocation_units a ON p.partition_id = a.container_id
	        WHERE p.object_id = t.object_id
	    ), 0) AS BIGINT) * 8 * 1024 AS size_bytes
	FROM sys.tables t
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	  AND t.is_ms_shipped = 0
	ORDER BY t.name
	`

// TableStats reports partition row counts and allocated pages. SQL Server
// keeps no reliable last-modified time, so LastModified is always nil.
func (r *CatalogReader) TableStats(ctx context.Context) ([]datasource.TableStats, error) {
	rows, err := r.db.QueryContext(ctx, tableStatsQuery, sql.Named("schema", r.schema))
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableStats
	for rows.Next() {
		var t datasource.TableStats
		if err := rows.Scan(&t.TableName, &t.RowCount, &t.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}
	return tables, nil
}

const columnsQuery = `
	SET NOCOUNT ON;
	SELECT
	    t.name AS table_name,
	    c.name AS column_name,
	    tp.name AS data_type,
	    CAST(c.is_nullable AS BIT) AS is_nullable,
	    dc.definition AS column_default,
	    c.column_id AS ordinal_position
	FROM sys.tables t
	INNER JOIN sys.columns c ON t.object_id = c.object_id
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	  AND t.is_ms_shipped = 0
	ORDER BY t.name, c.column_id
	`

func (r *CatalogReader) Columns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	rows, err := r.db.QueryContext(ctx, columnsQuery, sql.Named("schema", r.schema))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		var def sql.NullString
		if err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType, &c.IsNullable, &def, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		if def.Valid {
			c.DefaultValue = datasource.DefaultValueString(def.String)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

const indexColumnsQuery = `
	SET NOCOUNT ON;
	SELECT DISTINCT t.name AS table_name, c.name AS column_name
	FROM sys.tables t
	INNER JOIN sys.indexes i ON t.object_id = i.object_id
	INNER JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
	INNER JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	  AND t.is_ms_shipped = 0
	`

const primaryKeysQuery = `
	SET NOCOUNT ON;
	SELECT t.name AS table_name, c.name AS column_name
	FROM sys.tables t
	INNER JOIN sys.indexes i ON t.object_id = i.object_id AND i.is_primary_key = 1
	INNER JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
	INNER JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	ORDER BY t.name, ic.key_ordinal
	`

// PrimaryKeys returns primary key columns in key order.
func (r *CatalogReader) PrimaryKeys(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.columnKeys(ctx, primaryKeysQuery)
}

// UniqueColumns reports single-column unique indexes and constraints that are
// not the primary key.
func (r *CatalogReader) UniqueColumns(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.columnKeys(ctx, indexColumnsQuery+` AND i.is_unique = 1 AND i.is_primary_key = 0
	  AND (SELECT COUNT(*) FROM sys.index_columns x
	       WHERE x.object_id = i.object_id AND x.index_id = i.index_id AND x.is_included_column = 0) = 1`)
}

func (r *CatalogReader) IndexedColumns(ctx context.Context) ([]datasource.ColumnKey, error) {
	return r.columnKeys(ctx, indexColumnsQuery)
}

func (r *CatalogReader) columnKeys(ctx context.Context, query string) ([]datasource.ColumnKey, error) {
	rows, err := r.db.QueryContext(ctx, query, sql.Named("schema", r.schema))
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
	SET NOCOUNT ON;
	SELECT
	    fk.name AS constraint_name,
	    OBJECT_NAME(fkc.parent_object_id) AS source_table,
	    COL_NAME(fkc.parent_object_id, fkc.parent_column_id) AS source_column,
	    OBJECT_NAME(fkc.referenced_object_id) AS target_table,
	    COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id) AS target_column
	FROM sys.foreign_key_columns fkc
	INNER JOIN sys.foreign_keys fk ON fk.object_id = fkc.constraint_object_id
	WHERE OBJECT_SCHEMA_NAME(fkc.parent_object_id) = @schema
	ORDER BY source_table, fk.name, fkc.constraint_column_id
	`

func (r *CatalogReader) ForeignKeys(ctx context.Context) ([]datasource.ForeignKeyMetadata, error) {
	rows, err := r.db.QueryContext(ctx, foreignKeysQuery, sql.Named("schema", r.schema))
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []datasource.ForeignKeyMetadata
	for rows.Next() {
		var fk datasource.ForeignKeyMetadata
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceTable, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign key rows: %w", err)
	}
	return fks, nil
}

var _ datasource.CatalogReader = (*CatalogReader)(nil)
