package models

import "time"

// Table is one base table discovered in a datasource, in the dialect-independent shape
// shared by every connector. Columns and ReferencedBy are always non-nil after extraction.
type Table struct {
	Name         string      `json:"name" yaml:"name" bson:"name"`
	RowCount     int64       `json:"rowCount" yaml:"rowCount" bson:"rowCount"`    // approximate, from catalog statistics
	SizeBytes    int64       `json:"sizeBytes" yaml:"sizeBytes" bson:"sizeBytes"` // approximate, data + indexes
	LastModified *time.Time  `json:"lastModified" yaml:"lastModified" bson:"lastModified"`
	Columns      []Column    `json:"columns" yaml:"columns" bson:"columns"`
	ReferencedBy []ColumnRef `json:"referencedBy" yaml:"referencedBy" bson:"referencedBy"`

	// Populated by quality profiling only.
	QualityScore *int     `json:"qualityScore,omitempty" yaml:"qualityScore,omitempty" bson:"qualityScore,omitempty"`
	// Nil until profiled; a profiled table with no findings holds an empty slice.
	QualityFlags []string `json:"qualityFlags,omitzero" yaml:"qualityFlags" bson:"qualityFlags"`
}

// Column describes a single table column. DataType is the dialect's native type name.
type Column struct {
	Name          string     `json:"name" yaml:"name" bson:"name"`
	DataType      string     `json:"dataType" yaml:"dataType" bson:"dataType"`
	IsNullable    bool       `json:"isNullable" yaml:"isNullable" bson:"isNullable"`
	DefaultValue  *string    `json:"defaultValue" yaml:"defaultValue" bson:"defaultValue"`
	IsPrimaryKey  bool       `json:"isPrimaryKey" yaml:"isPrimaryKey" bson:"isPrimaryKey"`
	IsForeignKey  bool       `json:"isForeignKey" yaml:"isForeignKey" bson:"isForeignKey"`
	IsUnique      bool       `json:"isUnique" yaml:"isUnique" bson:"isUnique"`
	IsIndexed     bool       `json:"isIndexed" yaml:"isIndexed" bson:"isIndexed"`
	ForeignKeyRef *ColumnRef `json:"foreignKeyRef" yaml:"foreignKeyRef" bson:"foreignKeyRef"`
	Quality       *Quality   `json:"quality,omitempty" yaml:"quality,omitempty" bson:"quality,omitempty"`
}

// ColumnRef points at a column of another (or the same) table.
// It is never validated against the extracted schema; dangling refs are allowed.
type ColumnRef struct {
	Table  string `json:"table" yaml:"table" bson:"table"`
	Column string `json:"column" yaml:"column" bson:"column"`
}

// Quality holds the per-column profile computed from a row sample.
// The numeric sub-profile is only present when the column is substantially numeric.
type Quality struct {
	Completeness    float64 `json:"completeness" yaml:"completeness" bson:"completeness"`
	NullCount       int64   `json:"nullCount" yaml:"nullCount" bson:"nullCount"`
	DistinctCount   int64   `json:"distinctCount" yaml:"distinctCount" bson:"distinctCount"`
	UniquenessRatio float64 `json:"uniquenessRatio" yaml:"uniquenessRatio" bson:"uniquenessRatio"`

	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty" bson:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty" bson:"max,omitempty"`
	Avg          *float64 `json:"avg,omitempty" yaml:"avg,omitempty" bson:"avg,omitempty"`
	StdDev       *float64 `json:"stdDev,omitempty" yaml:"stdDev,omitempty" bson:"stdDev,omitempty"`
	P25          *float64 `json:"p25,omitempty" yaml:"p25,omitempty" bson:"p25,omitempty"`
	P50          *float64 `json:"p50,omitempty" yaml:"p50,omitempty" bson:"p50,omitempty"`
	P75          *float64 `json:"p75,omitempty" yaml:"p75,omitempty" bson:"p75,omitempty"`
	P95          *float64 `json:"p95,omitempty" yaml:"p95,omitempty" bson:"p95,omitempty"`
	Skewness     *float64 `json:"skewness,omitempty" yaml:"skewness,omitempty" bson:"skewness,omitempty"`
	Kurtosis     *float64 `json:"kurtosis,omitempty" yaml:"kurtosis,omitempty" bson:"kurtosis,omitempty"`
	OutlierCount *int64   `json:"outlierCount,omitempty" yaml:"outlierCount,omitempty" bson:"outlierCount,omitempty"`
	OutlierPct   *float64 `json:"outlierPct,omitempty" yaml:"outlierPct,omitempty" bson:"outlierPct,omitempty"`
}

// PrimaryKeyColumns returns the names of the table's primary key columns in ordinal order.
func (t *Table) PrimaryKeyColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			names = append(names, c.Name)
		}
	}
	return names
}

// ColumnNames returns all column names in ordinal order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Clone returns a deep copy of the table so callers can annotate it without
// mutating the original.
func (t *Table) Clone() Table {
	out := *t
	if t.LastModified != nil {
		lm := *t.LastModified
		out.LastModified = &lm
	}
	out.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cc := c
		if c.DefaultValue != nil {
			d := *c.DefaultValue
			cc.DefaultValue = &d
		}
		if c.ForeignKeyRef != nil {
			ref := *c.ForeignKeyRef
			cc.ForeignKeyRef = &ref
		}
		if c.Quality != nil {
			q := *c.Quality
			cc.Quality = &q
		}
		out.Columns[i] = cc
	}
	out.ReferencedBy = append([]ColumnRef{}, t.ReferencedBy...)
	if t.QualityScore != nil {
		s := *t.QualityScore
		out.QualityScore = &s
	}
	if t.QualityFlags != nil {
		out.QualityFlags = append([]string{}, t.QualityFlags...)
	}
	return out
}
