// Package dialect selects the per-engine catalog implementation once, at
// startup, from the configured dialect name or the connection URL.
package dialect

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/dialect/mssql"
	"github.com/koustreak/typegen/internal/dialect/mysql"
	"github.com/koustreak/typegen/internal/dialect/postgres"
	"github.com/koustreak/typegen/internal/dialect/sqlite"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/typemap"
)

// Dialect is one database engine: how to connect, how to read its catalog
// and how its native type names map to canonical types.
type Dialect interface {
	Name() string
	Open(ctx context.Context, cfg *database.Config) (database.DB, error)
	NewReader(q database.Querier) catalog.Reader
	Types() typemap.Table
}

type entry struct {
	dialect Dialect
	driver  database.Driver
}

var registry = map[string]entry{
	"postgres":          {postgres.Dialect{}, database.DriverPostgres},
	"mysql":             {mysql.Dialect{}, database.DriverMySQL},
	"mssql":             {mssql.Dialect{}, database.DriverSQLServer},
	"sqlite":            {sqlite.Dialect{}, database.DriverSQLite},
	"bun-sqlite":        {sqlite.Dialect{}, database.DriverSQLite},
	"kysely-bun-sqlite": {sqlite.Dialect{}, database.DriverSQLite},
	"worker-bun-sqlite": {sqlite.Dialect{}, database.DriverSQLite},
	"libsql":            {sqlite.Dialect{}, database.DriverSQLite},
}

// Names lists the accepted dialect names in sorted order.
var Names = []string{
	"bun-sqlite", "kysely-bun-sqlite", "libsql", "mssql",
	"mysql", "postgres", "sqlite", "worker-bun-sqlite",
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	e, ok := registry[name]
	if !ok {
		return nil, errs.Config(fmt.Sprintf("Unknown dialect '%s'", name), "dialectName")
	}
	return e.dialect, nil
}

// Driver returns the connection driver used by the named dialect.
func Driver(name string) database.Driver {
	return registry[name].driver
}

// Infer picks a dialect name from the connection URL scheme. Anything that
// is not a recognised network URL is treated as a SQLite file path.
func Infer(url string) string {
	scheme := ""
	if i := strings.Index(url, "://"); i > 0 {
		scheme = strings.ToLower(url[:i])
	}
	switch scheme {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	case "mssql", "sqlserver":
		return "mssql"
	case "libsql":
		return "libsql"
	default:
		return "sqlite"
	}
}

// Resolve returns the configured dialect, inferring it from url when name
// is empty.
func Resolve(name, url string) (string, Dialect, error) {
	if name == "" {
		name = Infer(url)
	}
	d, err := Lookup(name)
	if err != nil {
		return "", nil, err
	}
	return name, d, nil
}
