package datasource

import "time"

// TableStats represents a discovered base table with catalog statistics.
type TableStats struct {
	TableName    string
	RowCount     int64
	SizeBytes    int64
	LastModified *time.Time
}

// ColumnMetadata represents a discovered table column.
type ColumnMetadata struct {
	TableName       string
	ColumnName      string
	DataType        string
	IsNullable      bool
	DefaultValue    *string
	OrdinalPosition int
}

// ColumnKey identifies a column by table and name. Used for PK, unique and index lookups.
type ColumnKey struct {
	TableName  string
	ColumnName string
}

// ForeignKeyMetadata represents one column of a discovered foreign key constraint.
type ForeignKeyMetadata struct {
	ConstraintName string
	SourceTable    string
	SourceColumn   string
	TargetTable    string
	TargetColumn   string
}

// Source returns the referencing column.
func (fk ForeignKeyMetadata) Source() ColumnKey {
	return ColumnKey{TableName: fk.SourceTable, ColumnName: fk.SourceColumn}
}
