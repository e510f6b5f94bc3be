package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

// Syntax quotes identifiers with pgx.Identifier and qualifies tables with the
// configured schema.
type Syntax struct {
	Schema string
}

func (s Syntax) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QualifiedTable returns "schema"."table", or just "table" without a schema.
func (s Syntax) QualifiedTable(table string) string {
	if s.Schema == "" {
		return s.QuoteIdentifier(table)
	}
	return pgx.Identifier{s.Schema, table}.Sanitize()
}

func (s Syntax) LimitStyle() datasource.LimitStyle {
	return datasource.LimitClause
}

// Sampler reads row samples over one pgx connection.
type Sampler struct {
	conn   *pgx.Conn
	syntax Syntax
	logger *zap.Logger
}

// OpenSampler connects with creds and returns a sampler owning the connection.
func OpenSampler(ctx context.Context, creds models.Credentials, opts datasource.AdapterOptions) (*Sampler, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := FromCredentials(creds, opts.ConnectTimeout)

	conn, err := connect(ctx, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Sampler{conn: conn, syntax: Syntax{Schema: cfg.Schema}, logger: opts.Logger}, nil
}

func (s *Sampler) LoadSample(ctx context.Context, table string, columns []string, limit int) (*datasource.Sample, error) {
	query := datasource.BuildSampleQuery(s.syntax, table, columns, limit)
	s.logger.Debug("Loading sample",
		zap.String("table", table),
		zap.String("query", logging.SanitizeQuery(query)))

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	sample := &datasource.Sample{Columns: make([]string, len(fields))}
	for i, f := range fields {
		sample.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read sample row of %s: %w", table, err)
		}
		for i, v := range values {
			values[i] = datasource.NormalizeValue(v)
		}
		sample.Rows = append(sample.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample of %s: %w", table, err)
	}
	return sample, nil
}

func (s *Sampler) CountOrphans(ctx context.Context, table, column, refTable, refColumn string) (int64, error) {
	query := datasource.BuildOrphanCountQuery(s.syntax, table, column, refTable, refColumn)

	var count int64
	if err := s.conn.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orphans %s.%s: %w", table, column, err)
	}
	return count, nil
}

func (s *Sampler) Close() error {
	closeConn(s.conn, s.logger)
	return nil
}

var _ datasource.Sampler = (*Sampler)(nil)
