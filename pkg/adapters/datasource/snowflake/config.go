package snowflake

import (
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
)

// Config contains Snowflake-specific connection options.
type Config struct {
	Account        string
	User           string
	Password       string
	Database       string
	Schema         string
	Warehouse      string
	Role           string
	ConnectTimeout time.Duration
}

// DefaultSchema returns the schema inspected when credentials name none.
func DefaultSchema() string {
	return "PUBLIC"
}

// FromCredentials creates a Config from generic credentials. Database and
// schema are upper-cased to match Snowflake's unquoted identifier folding.
func FromCredentials(creds models.Credentials, connectTimeout time.Duration) *Config {
	if connectTimeout <= 0 {
		connectTimeout = datasource.DefaultConnectTimeout
	}
	return &Config{
		Account:        creds.Account,
		User:           creds.Username,
		Password:       creds.Password,
		Database:       strings.ToUpper(creds.Database),
		Schema:         strings.ToUpper(creds.SchemaOr(DefaultSchema())),
		Warehouse:      creds.Warehouse,
		Role:           creds.Role,
		ConnectTimeout: connectTimeout,
	}
}

// DSN renders the gosnowflake DSN.
func (c *Config) DSN() (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:      c.Account,
		User:         c.User,
		Password:     c.Password,
		Database:     c.Database,
		Schema:       c.Schema,
		Warehouse:    c.Warehouse,
		Role:         c.Role,
		LoginTimeout: c.ConnectTimeout,
	})
}
