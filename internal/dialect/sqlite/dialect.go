// Package sqlite is the SQLite dialect backed by mattn/go-sqlite3. The
// bun-sqlite, kysely-bun-sqlite, worker-bun-sqlite and libsql dialect names
// all resolve here for local database files.
package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/database/sqldb"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
	"github.com/koustreak/typegen/internal/typemap"
)

// Dialect implements dialect.Dialect for SQLite.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

// Open opens the database file named by cfg.DSN. A sqlite:// or file://
// prefix is accepted. The pool is capped at one connection so in-memory
// databases are not split across connections.
func (Dialect) Open(ctx context.Context, cfg *database.Config) (database.DB, error) {
	c := *cfg
	c.DSN = DSN(cfg.DSN)
	c.MaxConns = 1
	c.MinConns = 1

	d, err := sqldb.Open(ctx, &c, Options())
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (Dialect) NewReader(q database.Querier) catalog.Reader { return NewReader(q) }

func (Dialect) Types() typemap.Table { return Types }

// Options are the database/sql settings for SQLite. The default deferred
// transaction already gives a consistent snapshot.
func Options() sqldb.Options {
	return sqldb.Options{
		DriverName: "sqlite3",
		MapError:   mapError,
	}
}

// DSN strips URL-style prefixes from a database path.
func DSN(raw string) string {
	for _, p := range []string{"sqlite://", "sqlite3://", "file://"} {
		if strings.HasPrefix(raw, p) {
			return strings.TrimPrefix(raw, p)
		}
	}
	return raw
}

func mapError(err error, msg string) *errs.Error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return sqldb.MapError(err, msg)
	}
	switch sqliteErr.Code {
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrInterrupt:
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	default:
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}
}

// Types maps declared column types (affinity names) to canonical kinds.
var Types = typemap.Table{
	"boolean": {Kind: schema.KindBoolean},
	"bool":    {Kind: schema.KindBoolean},

	"integer":   {Kind: schema.KindInteger},
	"int":       {Kind: schema.KindInteger},
	"tinyint":   {Kind: schema.KindInteger},
	"smallint":  {Kind: schema.KindInteger},
	"mediumint": {Kind: schema.KindInteger},
	"bigint":    {Kind: schema.KindInteger},
	"int2":      {Kind: schema.KindInteger},
	"int8":      {Kind: schema.KindInteger},

	"real":             {Kind: schema.KindFloat},
	"double":           {Kind: schema.KindFloat},
	"double precision": {Kind: schema.KindFloat},
	"float":            {Kind: schema.KindFloat},
	"numeric":          {Kind: schema.KindDecimal},
	"decimal":          {Kind: schema.KindDecimal},

	"text":              {Kind: schema.KindText},
	"varchar":           {Kind: schema.KindText},
	"character":         {Kind: schema.KindText},
	"varying character": {Kind: schema.KindText},
	"nchar":             {Kind: schema.KindText},
	"nvarchar":          {Kind: schema.KindText},
	"char":              {Kind: schema.KindText},
	"clob":              {Kind: schema.KindText},

	"date":      {Kind: schema.KindDate},
	"datetime":  {Kind: schema.KindTimestamp},
	"timestamp": {Kind: schema.KindTimestamp},

	"json": {Kind: schema.KindJSON},
	"blob": {Kind: schema.KindBinary},
	"uuid": {Kind: schema.KindUUID},
}
