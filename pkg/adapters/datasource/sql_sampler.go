package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/logging"
)

// SQLSampler implements Sampler over a database/sql connection. It serves every
// dialect whose driver plugs into database/sql.
type SQLSampler struct {
	conn   *SQLConn
	syntax SQLSyntax
	logger *zap.Logger
}

// NewSQLSampler returns a sampler that owns conn and closes it on Close.
func NewSQLSampler(conn *SQLConn, syntax SQLSyntax, logger *zap.Logger) *SQLSampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLSampler{conn: conn, syntax: syntax, logger: logger}
}

func (s *SQLSampler) LoadSample(ctx context.Context, table string, columns []string, limit int) (*Sample, error) {
	query := BuildSampleQuery(s.syntax, table, columns, limit)
	s.logger.Debug("Loading sample",
		zap.String("table", table),
		zap.String("query", logging.SanitizeQuery(query)))

	rows, err := s.conn.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}

	sample := &Sample{Columns: names}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan sample row of %s: %w", table, err)
		}
		for i, v := range values {
			values[i] = NormalizeValue(v)
		}
		sample.Rows = append(sample.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample of %s: %w", table, err)
	}
	return sample, nil
}

func (s *SQLSampler) CountOrphans(ctx context.Context, table, column, refTable, refColumn string) (int64, error) {
	query := BuildOrphanCountQuery(s.syntax, table, column, refTable, refColumn)

	var count any
	if err := s.conn.DB().QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orphans %s.%s: %w", table, column, err)
	}
	return Int64Value(count), nil
}

func (s *SQLSampler) Close() error {
	return s.conn.Close()
}

var _ Sampler = (*SQLSampler)(nil)
