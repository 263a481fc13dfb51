package database

import (
	"fmt"
	"strings"
)

// Placeholder controls which bind parameter style a query uses.
type Placeholder int

const (
	// PlaceholderDollar uses $1, $2, … (PostgreSQL).
	PlaceholderDollar Placeholder = iota

	// PlaceholderQuestion uses ? (MySQL, SQLite).
	PlaceholderQuestion

	// PlaceholderAt uses @p1, @p2, … (SQL Server).
	PlaceholderAt
)

// Format returns the placeholder for the 1-based argument position idx.
func (p Placeholder) Format(idx int) string {
	switch p {
	case PlaceholderQuestion:
		return "?"
	case PlaceholderAt:
		return fmt.Sprintf("@p%d", idx)
	default:
		return fmt.Sprintf("$%d", idx)
	}
}

// InClause renders "column IN (…)" for values, numbering placeholders from
// start. Values are never interpolated into the SQL string; they are
// returned as args. An empty values list yields an empty clause.
//
// Usage (SQL Server):
//
//	clause, args := InClause(PlaceholderAt, "s.name", []string{"dbo", "sales"}, 1)
//	// clause: s.name IN (@p1, @p2)
func InClause(p Placeholder, column string, values []string, start int) (string, []any) {
	if len(values) == 0 {
		return "", nil
	}

	ph := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		ph[i] = p.Format(start + i)
		args[i] = v
	}
	return column + " IN (" + strings.Join(ph, ", ") + ")", args
}
