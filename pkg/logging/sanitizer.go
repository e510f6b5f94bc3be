package logging

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/models"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Matches: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches: private_key=xxx, token=xxx as used in snowflake and sqlserver DSNs
	tokenPattern = regexp.MustCompile(`(?i)(privatekey|private_key|token|accesstoken)=[^;&\s]+`)

	// Matches connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)

	// Matches user:pass@tcp(host) as produced by the mysql driver
	mysqlDSNPattern = regexp.MustCompile(`[^\s:/@]+:[^@\s]+@tcp\(`)
)

// SanitizeConnectionString removes sensitive data from connection strings.
// Use this before logging any DSN.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = tokenPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	sanitized = mysqlDSNPattern.ReplaceAllString(sanitized, RedactedText+"@tcp(")

	return sanitized
}

// SanitizeError sanitizes driver error messages that might echo a DSN.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeConnectionString(err.Error())
}

// SanitizeQuery truncates and sanitizes a SQL query for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := TruncateString(query, MaxQueryLogLength)
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// CredentialFields returns the loggable parts of creds. The password is never included.
func CredentialFields(creds models.Credentials) []zap.Field {
	fields := []zap.Field{
		zap.String("db_type", creds.Dialect),
		zap.String("database", creds.Database),
	}
	if creds.Account != "" {
		fields = append(fields, zap.String("account", creds.Account))
	} else {
		fields = append(fields, zap.String("host", creds.Host), zap.Int("port", creds.Port))
	}
	if creds.Schema != "" {
		fields = append(fields, zap.String("schema", creds.Schema))
	}
	return fields
}
