package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/config"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// All user-provided fields are URL-escaped so passwords containing @, /, # or ?
// do not break URL parsing. Loopback hosts are resolved for Docker.
func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	host := config.ResolveHostForDocker(cfg.Host)

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		sslMode,
	)
}

// connect opens a single connection bounded by cfg.ConnectTimeout.
func connect(ctx context.Context, cfg *Config, logger *zap.Logger) (*pgx.Conn, error) {
	connStr := buildConnectionString(cfg)

	connCfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, datasource.ConnectError(datasource.DialectPostgres, err)
	}
	connCfg.ConnectTimeout = cfg.ConnectTimeout

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		logger.Warn("PostgreSQL connection failed",
			zap.String("dsn", logging.SanitizeConnectionString(connStr)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, datasource.ConnectError(datasource.DialectPostgres, err)
	}
	return conn, nil
}

// closeConn closes conn independently of the request context, which may
// already be cancelled.
func closeConn(conn *pgx.Conn, logger *zap.Logger) {
	if err := conn.Close(context.Background()); err != nil {
		logger.Debug("Error closing PostgreSQL connection", zap.Error(err))
	}
}

// Connector extracts schemas from PostgreSQL.
type Connector struct {
	opts datasource.AdapterOptions
}

// NewConnector creates a PostgreSQL connector.
func NewConnector(opts datasource.AdapterOptions) *Connector {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Connector{opts: opts}
}

func (c *Connector) Dialect() datasource.Dialect {
	return datasource.DialectPostgres
}

// Extract opens one connection, reads the catalog of the configured schema
// and closes the connection before returning.
func (c *Connector) Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error) {
	cfg := FromCredentials(creds, c.opts.ConnectTimeout)

	conn, err := connect(ctx, cfg, c.opts.Logger)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn, c.opts.Logger)

	return datasource.ExtractSchema(ctx, NewCatalogReader(conn, cfg.Schema), c.opts.Logger)
}

var _ datasource.Connector = (*Connector)(nil)
