package mysql

import (
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/config"
	"github.com/datalens/datalens-engine/pkg/models"
)

// Config contains MySQL-specific connection options.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string // also the schema whose catalog is read
	ConnectTimeout time.Duration
}

// DefaultPort returns the default MySQL port.
func DefaultPort() int {
	return 3306
}

// FromCredentials creates a Config from generic credentials. MySQL has no
// schema level below the database, so creds.Schema is ignored.
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
		ConnectTimeout: connectTimeout,
	}
}

// DSN renders the driver DSN. parseTime is enabled so DATETIME columns scan
// into time.Time.
func (c *Config) DSN() string {
	dc := mysqldriver.NewConfig()
	dc.User = c.User
	dc.Passwd = c.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(config.ResolveHostForDocker(c.Host), strconv.Itoa(c.Port))
	dc.DBName = c.Database
	dc.Timeout = c.ConnectTimeout
	dc.ParseTime = true
	return dc.FormatDSN()
}
