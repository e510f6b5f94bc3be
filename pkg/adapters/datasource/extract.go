package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

// foreignKeyMap keeps foreign keys in discovery order. A column that appears
// twice keeps its first position and its last target.
type foreignKeyMap struct {
	keys []ColumnKey
	refs map[ColumnKey]models.ColumnRef
}

func newForeignKeyMap(fks []ForeignKeyMetadata) *foreignKeyMap {
	m := &foreignKeyMap{refs: make(map[ColumnKey]models.ColumnRef, len(fks))}
	for _, fk := range fks {
		key := fk.Source()
		if _, seen := m.refs[key]; !seen {
			m.keys = append(m.keys, key)
		}
		m.refs[key] = models.ColumnRef{Table: fk.TargetTable, Column: fk.TargetColumn}
	}
	return m
}

// referencedBy inverts the forward map: target table -> referencing columns.
func (m *foreignKeyMap) referencedBy() map[string][]models.ColumnRef {
	out := make(map[string][]models.ColumnRef)
	for _, key := range m.keys {
		ref := m.refs[key]
		out[ref.Table] = append(out[ref.Table], models.ColumnRef{Table: key.TableName, Column: key.ColumnName})
	}
	return out
}

type columnSet map[ColumnKey]struct{}

func newColumnSet(keys []ColumnKey) columnSet {
	s := make(columnSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s columnSet) has(k ColumnKey) bool {
	_, ok := s[k]
	return ok
}

// ExtractSchema runs the catalog queries of reader and assembles the
// dialect-independent table list.
//
// Table statistics, columns, primary keys and foreign keys are required: any
// failure aborts extraction. Unique and index signals are secondary; a failing
// query is logged and treated as absent.
func ExtractSchema(ctx context.Context, reader CatalogReader, logger *zap.Logger) ([]models.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	caps := reader.Capabilities()

	stats, err := reader.TableStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("query table stats: %w", err)
	}

	columns, err := reader.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	pks := columnSet{}
	if caps.PrimaryKeys {
		keys, err := reader.PrimaryKeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("query primary keys: %w", err)
		}
		pks = newColumnSet(keys)
	}

	fks := newForeignKeyMap(nil)
	if caps.ForeignKeys {
		rows, err := reader.ForeignKeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("query foreign keys: %w", err)
		}
		fks = newForeignKeyMap(rows)
	}
	referencedBy := fks.referencedBy()

	unique := columnSet{}
	if caps.Unique {
		keys, err := reader.UniqueColumns(ctx)
		if err != nil {
			logger.Warn("Unique constraint query failed, continuing without unique flags",
				zap.String("error", logging.SanitizeError(err)))
		} else {
			unique = newColumnSet(keys)
		}
	}

	indexed := columnSet{}
	if caps.Indexes {
		keys, err := reader.IndexedColumns(ctx)
		if err != nil {
			logger.Warn("Index query failed, continuing without index flags",
				zap.String("error", logging.SanitizeError(err)))
		} else {
			indexed = newColumnSet(keys)
		}
	}

	colsByTable := make(map[string][]models.Column)
	for _, c := range columns {
		key := ColumnKey{TableName: c.TableName, ColumnName: c.ColumnName}
		col := models.Column{
			Name:         c.ColumnName,
			DataType:     c.DataType,
			IsNullable:   c.IsNullable,
			DefaultValue: c.DefaultValue,
			IsPrimaryKey: pks.has(key),
			IsUnique:     unique.has(key),
			IsIndexed:    indexed.has(key),
		}
		if ref, ok := fks.refs[key]; ok {
			col.IsForeignKey = true
			col.ForeignKeyRef = &ref
		}
		colsByTable[c.TableName] = append(colsByTable[c.TableName], col)
	}

	tables := make([]models.Table, 0, len(stats))
	for _, s := range stats {
		t := models.Table{
			Name:         s.TableName,
			RowCount:     s.RowCount,
			SizeBytes:    s.SizeBytes,
			LastModified: s.LastModified,
			Columns:      colsByTable[s.TableName],
			ReferencedBy: referencedBy[s.TableName],
		}
		if t.Columns == nil {
			t.Columns = []models.Column{}
		}
		if t.ReferencedBy == nil {
			t.ReferencedBy = []models.ColumnRef{}
		}
		tables = append(tables, t)
	}

	logger.Debug("Extracted schema",
		zap.Int("tables", len(tables)),
		zap.Int("columns", len(columns)),
		zap.Int("foreign_keys", len(fks.keys)))

	return tables, nil
}
