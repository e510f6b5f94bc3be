package datasource

import (
	"fmt"
	"strings"
	"time"

	"github.com/datalens/datalens-engine/pkg/apperrors"
)

// Dialect identifies one of the supported catalog dialects.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectMSSQL     Dialect = "mssql"
	DialectSnowflake Dialect = "snowflake"
)

// DefaultConnectTimeout bounds every connection attempt. Queries issued after
// connecting are bounded only by the caller's context.
const DefaultConnectTimeout = 10 * time.Second

// Dialects returns the closed set of supported dialects.
func Dialects() []Dialect {
	return []Dialect{DialectPostgres, DialectMySQL, DialectMSSQL, DialectSnowflake}
}

// ParseDialect validates a dialect tag. Tags are matched case-insensitively.
func ParseDialect(tag string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(tag)))
	for _, known := range Dialects() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported database type: %q", apperrors.ErrValidation, tag)
}

func (d Dialect) String() string {
	return string(d)
}

// ConnectError wraps a driver connection failure so callers can match
// apperrors.ErrConnection while keeping the driver's cause.
func ConnectError(d Dialect, err error) error {
	return fmt.Errorf("connect to %s: %w: %w", d, apperrors.ErrConnection, err)
}
