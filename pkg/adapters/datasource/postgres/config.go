package postgres

import (
	"time"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
)

// Config contains PostgreSQL-specific connection options.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	Schema         string // catalog queries are restricted to this schema
	SSLMode        string // "disable", "prefer", "require", "verify-ca", "verify-full"
	ConnectTimeout time.Duration
}

// DefaultPort returns the default PostgreSQL port.
func DefaultPort() int {
	return 5432
}

// DefaultSchema returns the schema inspected when credentials name none.
func DefaultSchema() string {
	return "public"
}

// DefaultSSLMode returns the default SSL mode, matching libpq.
func DefaultSSLMode() string {
	return "prefer"
}

// FromCredentials creates a Config from generic credentials. Nothing is
// required here; missing values surface as connection errors.
func FromCredentials(creds models.Credentials, connectTimeout time.Duration) *Config {
	if connectTimeout <= 0 {
		connectTimeout = datasource.DefaultConnectTimeout
	}
	return &Config{
		Host:           creds.Host,
		Port:           creds.PortOr(DefaultPort()),
		User:           creds.Username,
		Password:       creds.Password,
		Database:       creds.Database,
		Schema:         creds.SchemaOr(DefaultSchema()),
		SSLMode:        DefaultSSLMode(),
		ConnectTimeout: connectTimeout,
	}
}
