package snowflake

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
)

// CatalogReader reads <DATABASE>.INFORMATION_SCHEMA for one schema.
type CatalogReader struct {
	db       *sql.DB
	database string
	schema   string
}

func NewCatalogReader(db *sql.DB, database, schemaName string) *CatalogReader {
	if schemaName == "" {
		schemaName = DefaultSchema()
	}
	return &CatalogReader{db: db, database: database, schema: schemaName}
}

// Capabilities is empty: Snowflake does not enforce keys and has no indexes.
func (r *CatalogReader) Capabilities() datasource.Capabilities {
	return datasource.Capabilities{}
}

func (r *CatalogReader) informationSchema() string {
	return Syntax{}.QuoteIdentifier(r.database) + ".INFORMATION_SCHEMA"
}

func (r *CatalogReader) tableStatsQuery() string {
	return fmt.Sprintf(`
		SELECT TABLE_NAME, ROW_COUNT, BYTES, LAST_ALTERED
		FROM %s.TABLES
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`, r.informationSchema())
}

func (r *CatalogReader) TableStats(ctx context.Context) ([]datasource.TableStats, error) {
	rows, err := r.db.QueryContext(ctx, r.tableStatsQuery(), r.schema)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableStats
	for rows.Next() {
		var t datasource.TableStats
		var rowCount, bytes sql.NullInt64
		var altered sql.NullTime
		if err := rows.Scan(&t.TableName, &rowCount, &bytes, &altered); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.RowCount = rowCount.Int64
		t.SizeBytes = bytes.Int64
		if altered.Valid {
			t.LastModified = datasource.TimeValue(altered.Time)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (r *CatalogReader) columnsQuery() string {
	return fmt.Sprintf(`
		SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, ORDINAL_POSITION
		FROM %s.COLUMNS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME, ORDINAL_POSITION
	`, r.informationSchema())
}

func (r *CatalogReader) Columns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	rows, err := r.db.QueryContext(ctx, r.columnsQuery(), r.schema)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		var nullable string
		var def sql.NullString
		if err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType, &nullable, &def, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.IsNullable = nullable == "YES"
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

// The key and index queries are never issued; Capabilities reports none.

func (r *CatalogReader) PrimaryKeys(context.Context) ([]datasource.ColumnKey, error) {
	return nil, nil
}

func (r *CatalogReader) ForeignKeys(context.Context) ([]datasource.ForeignKeyMetadata, error) {
	return nil, nil
}

func (r *CatalogReader) UniqueColumns(context.Context) ([]datasource.ColumnKey, error) {
	return nil, nil
}

func (r *CatalogReader) IndexedColumns(context.Context) ([]datasource.ColumnKey, error) {
	return nil, nil
}

var _ datasource.CatalogReader = (*CatalogReader)(nil)
