package datasource

import (
	"context"
	"database/sql"
	"time"
)

// ScopedConn abstracts the single connection an Extract or Profile call owns
// across different database drivers.
type ScopedConn interface {
	// Ping verifies the connection is alive
	Ping(ctx context.Context) error

	// Close releases the connection
	Close() error

	Dialect() Dialect
}

// SQLConn wraps a *sql.DB pinned to one connection.
type SQLConn struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLConn wraps an already opened handle. The handle is limited to one
// open connection.
func NewSQLConn(db *sql.DB, dialect Dialect) *SQLConn {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SQLConn{db: db, dialect: dialect}
}

// OpenSQLConn opens driverName with dsn and verifies the connection within
// timeout. Failures wrap apperrors.ErrConnection; no handle is leaked.
func OpenSQLConn(ctx context.Context, dialect Dialect, driverName, dsn string, timeout time.Duration) (*SQLConn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, ConnectError(dialect, err)
	}
	conn := NewSQLConn(db, dialect)

	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := conn.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, ConnectError(dialect, err)
	}
	return conn, nil
}

func (c *SQLConn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLConn) Close() error {
	return c.db.Close()
}

func (c *SQLConn) Dialect() Dialect {
	return c.dialect
}

// DB returns the underlying *sql.DB
func (c *SQLConn) DB() *sql.DB {
	return c.db
}

var _ ScopedConn = (*SQLConn)(nil)
