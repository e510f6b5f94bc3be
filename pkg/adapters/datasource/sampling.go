package datasource

import (
	"fmt"
	"strings"
)

// BuildSampleQuery returns a bounded SELECT of columns from table in the
// dialect's syntax. An empty column list selects every column.
func BuildSampleQuery(s SQLSyntax, table string, columns []string, limit int) string {
	selectList := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = s.QuoteIdentifier(c)
		}
		selectList = strings.Join(quoted, ", ")
	}

	if s.LimitStyle() == TopClause {
		return fmt.Sprintf("SELECT TOP (%d) %s FROM %s", limit, selectList, s.QualifiedTable(table))
	}
	return fmt.Sprintf("SELECT %s FROM %s LIMIT %d", selectList, s.QualifiedTable(table), limit)
}

// BuildOrphanCountQuery returns a query counting rows of table whose non-null
// column value has no match in refTable.refColumn.
func BuildOrphanCountQuery(s SQLSyntax, table, column, refTable, refColumn string) string {
	c := s.QuoteIdentifier(column)
	rc := s.QuoteIdentifier(refColumn)
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM %s t LEFT JOIN %s r ON t.%s = r.%s WHERE t.%s IS NOT NULL AND r.%s IS NULL",
		s.QualifiedTable(table), s.QualifiedTable(refTable), c, rc, c, rc,
	)
}

// QuoteWith wraps name in open/close and doubles any embedded close character.
// It covers the "name", `name` and [name] quoting styles.
func QuoteWith(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}
