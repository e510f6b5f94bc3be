package mssql

import (
	"context"
	"net"
	"net/url"
	"strconv"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/config"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

const driverName = "sqlserver"

// buildConnectionString builds a sqlserver:// URL for SQL authentication.
// Credentials travel in the userinfo section and are escaped by net/url.
func buildConnectionString(cfg *Config) string {
	query := url.Values{}
	query.Add("database", cfg.Database)

	// Without an explicit request the driver default applies: the login is
	// encrypted and servers that force encryption are honoured.
	if cfg.Encrypt {
		query.Add("encrypt", "true")
	}

	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	if secs := int(cfg.ConnectTimeout.Seconds()); secs > 0 {
		query.Add("connection timeout", strconv.Itoa(secs))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(config.ResolveHostForDocker(cfg.Host), strconv.Itoa(cfg.Port)),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func open(ctx context.Context, cfg *Config, logger *zap.Logger) (*datasource.SQLConn, error) {
	connStr := buildConnectionString(cfg)

	conn, err := datasource.OpenSQLConn(ctx, datasource.DialectMSSQL, driverName, connStr, cfg.ConnectTimeout)
	if err != nil {
		logger.Warn("SQL Server connection failed",
			zap.String("dsn", logging.SanitizeConnectionString(connStr)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return conn, nil
}

// Connector extracts schemas from SQL Server.
type Connector struct {
	opts datasource.AdapterOptions
}

// NewConnector creates a SQL Server connector.
func NewConnector(opts datasource.AdapterOptions) *Connector {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Connector{opts: opts}
}

func (c *Connector) Dialect() datasource.Dialect {
	return datasource.DialectMSSQL
}

// Extract reads the catalog of the configured schema (dbo by default).
func (c *Connector) Extract(ctx context.Context, creds models.Credentials) ([]models.Table, error) {
	cfg := FromCredentials(creds, c.opts.ConnectTimeout)

	conn, err := open(ctx, cfg, c.opts.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			c.opts.Logger.Debug("Error closing SQL Server connection", zap.Error(err))
		}
	}()

	return datasource.ExtractSchema(ctx, NewCatalogReader(conn.DB(), cfg.Schema), c.opts.Logger)
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
	return datasource.NewSQLSampler(conn, Syntax{Schema: cfg.Schema}, opts.Logger), nil
}

var _ datasource.Connector = (*Connector)(nil)
