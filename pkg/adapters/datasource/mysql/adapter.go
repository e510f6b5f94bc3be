package mysql

import (
	"context"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

const driverName = "mysql"

func open(ctx context.Context, cfg *Config, logger *zap.Logger) (*datasource.SQLConn, error) {
	dsn := cfg.DSN()

	conn, err := datasource.OpenSQLConn(ctx, datasource.DialectMySQL, driverName, dsn, cfg.ConnectTimeout)
	if err != nil {
		logger.Warn("MySQL connection failed",
			zap.String("dsn", logging.SanitizeConnectionString(dsn)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return conn, nil
}

// Connector extracts schemas from MySQL and MariaDB.
type Connector struct {
	opts datasource.AdapterOptions
}

// NewConnector creates a MySQL connector.
func NewConnector(opts datasource.AdapterOptions) *Connector {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Connector{opts: opts}
}

func (c *Connector) Dialect() datasource.Dialect {
	return datasource.DialectMySQL
}

func (c *Connector) Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error) {
	cfg := FromCredentials(creds, c.opts.ConnectTimeout)

	conn, err := open(ctx, cfg, c.opts.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			c.opts.Logger.Debug("Error closing MySQL connection", zap.Error(err))
		}
	}()

	return datasource.ExtractSchema(ctx, NewCatalogReader(conn.DB(), cfg.Database), c.opts.Logger)
}

// OpenSampler connects with creds and returns a sampler owning the connection.
func OpenSampler(ctx context.Context, creds models.Credentials, opts datasource.AdapterOptions) (*datasource.SQLSampler, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := FromCredentials(creds, opts.ConnectTimeout)

	conn, err := open(ctx, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}
	return datasource.NewSQLSampler(conn, Syntax{Database: cfg.Database}, opts.Logger), nil
}

// Syntax quotes identifiers with backticks.
type Syntax struct {
	Database string
}

func (s Syntax) QuoteIdentifier(name string) string {
	return datasource.QuoteWith(name, "`", "`")
}

func (s Syntax) QualifiedTable(table string) string {
	if s.Database == "" {
		return s.QuoteIdentifier(table)
	}
	return s.QuoteIdentifier(s.Database) + "." + s.QuoteIdentifier(table)
}

func (s Syntax) LimitStyle() datasource.LimitStyle {
	return datasource.LimitClause
}

var (
	_ datasource.Connector = (*Connector)(nil)
	_ datasource.SQLSyntax = Syntax{}
)
