package mssql

import (
	"time"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
)

// Config contains SQL Server-specific connection options. Only SQL
// authentication is supported.
type Config struct {
	Host     string
	Port     int
	Database string
	Schema   string

	Username string
	Password string

	// Connection options
	Encrypt                bool
	TrustServerCertificate bool
	ConnectTimeout         time.Duration
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultSchema returns the schema inspected when credentials name none.
func DefaultSchema() string {
	return "dbo"
}

// FromCredentials creates a Config from generic credentials.
func FromCredentials(creds models.Credentials, connectTimeout time.Duration) *Config {
	if connectTimeout <= 0 {
		connectTimeout = datasource.DefaultConnectTimeout
	}
	return &Config{
		Host:           creds.Host,
		Port:           creds.PortOr(DefaultPort()),
		Database:       creds.Database,
		Schema:         creds.SchemaOr(DefaultSchema()),
		Username:       creds.Username,
		Password:       creds.Password,
		ConnectTimeout: connectTimeout,
	}
}
