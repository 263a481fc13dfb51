// Package mssql is the SQL Server dialect backed by microsoft/go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	gomssql "github.com/microsoft/go-mssqldb"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/database/sqldb"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
	"github.com/koustreak/typegen/internal/typemap"
)

// SQL Server error numbers
const (
	errPermissionDenied  = 229
	errPermissionDenied2 = 230
	errLoginFailed       = 18456
	errCannotOpenDB      = 4060
	errLockTimeout       = 1222
)

// Dialect implements dialect.Dialect for SQL Server.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }

// Open accepts sqlserver:// and mssql:// URLs as well as ADO-style strings.
func (Dialect) Open(ctx context.Context, cfg *database.Config) (database.DB, error) {
	c := *cfg
	c.DSN = DSN(cfg.DSN)

	d, err := sqldb.Open(ctx, &c, Options())
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (Dialect) NewReader(q database.Querier) catalog.Reader { return NewReader(q) }

func (Dialect) Types() typemap.Table { return Types }

// Options are the database/sql settings for SQL Server. The driver rejects
// read-only transactions, so only the isolation level is requested.
func Options() sqldb.Options {
	return sqldb.Options{
		DriverName: "sqlserver",
		TxOptions:  &sql.TxOptions{Isolation: sql.LevelRepeatableRead},
		MapError:   mapError,
	}
}

// DSN rewrites the mssql:// scheme to the sqlserver:// scheme the driver expects.
func DSN(raw string) string {
	if strings.HasPrefix(raw, "mssql://") {
		return "sqlserver://" + strings.TrimPrefix(raw, "mssql://")
	}
	return raw
}

func mapError(err error, msg string) *errs.Error {
	var sqlErr gomssql.Error
	if !errors.As(err, &sqlErr) {
		mapped := sqldb.MapError(err, msg)
		if mapped.Kind == errs.ErrKindQueryFailed {
			// network and login handshake failures surface as plain errors
			mapped.Kind = errs.ErrKindConnectionFailed
		}
		return mapped
	}
	switch sqlErr.Number {
	case errPermissionDenied, errPermissionDenied2, errLoginFailed:
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	case errCannotOpenDB:
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	case errLockTimeout:
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	default:
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}
}

// Types maps sys.types names to canonical kinds.
var Types = typemap.Table{
	"bit": {Kind: schema.KindBoolean},

	"tinyint":  {Kind: schema.KindInteger},
	"smallint": {Kind: schema.KindInteger},
	"int":      {Kind: schema.KindInteger},
	"bigint":   {Kind: schema.KindInteger, Wide: true},

	"float":      {Kind: schema.KindFloat},
	"real":       {Kind: schema.KindFloat},
	"decimal":    {Kind: schema.KindDecimal},
	"numeric":    {Kind: schema.KindDecimal},
	"money":      {Kind: schema.KindDecimal},
	"smallmoney": {Kind: schema.KindDecimal},

	"char":     {Kind: schema.KindText},
	"nchar":    {Kind: schema.KindText},
	"varchar":  {Kind: schema.KindText},
	"nvarchar": {Kind: schema.KindText},
	"text":     {Kind: schema.KindText},
	"ntext":    {Kind: schema.KindText},
	"xml":      {Kind: schema.KindText},
	"time":     {Kind: schema.KindText},
	"sysname":  {Kind: schema.KindText},

	"date":           {Kind: schema.KindDate},
	"datetime":       {Kind: schema.KindTimestamp},
	"datetime2":      {Kind: schema.KindTimestamp},
	"smalldatetime":  {Kind: schema.KindTimestamp},
	"datetimeoffset": {Kind: schema.KindTimestampTZ},

	"binary":           {Kind: schema.KindBinary},
	"varbinary":        {Kind: schema.KindBinary},
	"image":            {Kind: schema.KindBinary},
	"rowversion":       {Kind: schema.KindBinary},
	"timestamp":        {Kind: schema.KindBinary},
	"uniqueidentifier": {Kind: schema.KindUUID},
}
