package models

import "fmt"

// Credentials identifies a target datastore and how to log in to it.
// Only the fields relevant to the chosen dialect are read; missing optional
// fields never fail before a connection is attempted.
type Credentials struct {
	Dialect  string `json:"db_type" yaml:"db_type"` // "postgres", "mysql", "mssql", "snowflake"
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"` // 0 means the dialect default
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Warehouse dialect only.
	Account   string `json:"account,omitempty" yaml:"account,omitempty"`
	Warehouse string `json:"warehouse,omitempty" yaml:"warehouse,omitempty"`
	Schema    string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
}

// PortOr returns the configured port, or def when none was given.
func (c Credentials) PortOr(def int) int {
	if c.Port <= 0 {
		return def
	}
	return c.Port
}

// SchemaOr returns the configured schema, or def when none was given.
func (c Credentials) SchemaOr(def string) string {
	if c.Schema == "" {
		return def
	}
	return c.Schema
}

// String never includes the password.
func (c Credentials) String() string {
	if c.Account != "" {
		return fmt.Sprintf("%s://%s@%s/%s", c.Dialect, c.Username, c.Account, c.Database)
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Dialect, c.Username, c.Host, c.Port, c.Database)
}
