package mssql

import (
	"fmt"
	"strings"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
)

// quoteName mirrors SQL Server's QUOTENAME: square brackets with ] escaped as ]].
func quoteName(identifier string) string {
	return datasource.QuoteWith(identifier, "[", "]")
}

// buildFullyQualifiedName builds a fully qualified table name: [schema].[table]
func buildFullyQualifiedName(schema, table string) string {
	return fmt.Sprintf("%s.%s", quoteName(schema), quoteName(table))
}

// Syntax implements datasource.SQLSyntax for T-SQL.
type Syntax struct {
	Schema string
}

func (s Syntax) QuoteIdentifier(name string) string {
	return quoteName(name)
}

func (s Syntax) QualifiedTable(table string) string {
	if strings.TrimSpace(s.Schema) == "" {
		return quoteName(table)
	}
	return buildFullyQualifiedName(s.Schema, table)
}

// LimitStyle is TOP; T-SQL has no LIMIT clause.
func (s Syntax) LimitStyle() datasource.LimitStyle {
	return datasource.TopClause
}

var _ datasource.SQLSyntax = Syntax{}
