// Package postgres is the PostgreSQL dialect: pg_catalog reader, type table
// and a pgxpool connection.
package postgres

import (
	"context"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	pgdb "github.com/koustreak/typegen/internal/database/postgres"
	"github.com/koustreak/typegen/internal/schema"
	"github.com/koustreak/typegen/internal/typemap"
)

// Dialect implements dialect.Dialect for PostgreSQL.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// Open connects with cfg.DSN, which may be a postgres:// URL or a keyword/value DSN.
func (Dialect) Open(ctx context.Context, cfg *database.Config) (database.DB, error) {
	d, err := pgdb.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (Dialect) NewReader(q database.Querier) catalog.Reader { return NewReader(q) }

func (Dialect) Types() typemap.Table { return Types }

// Types maps pg_type.typname to canonical kinds.
var Types = typemap.Table{
	"bool": {Kind: schema.KindBoolean},

	"int2":        {Kind: schema.KindInteger},
	"int4":        {Kind: schema.KindInteger},
	"int8":        {Kind: schema.KindInteger, Wide: true},
	"oid":         {Kind: schema.KindInteger},
	"smallserial": {Kind: schema.KindInteger, Generated: true},
	"serial2":     {Kind: schema.KindInteger, Generated: true},
	"serial":      {Kind: schema.KindInteger, Generated: true},
	"serial4":     {Kind: schema.KindInteger, Generated: true},
	"bigserial":   {Kind: schema.KindInteger, Wide: true, Generated: true},
	"serial8":     {Kind: schema.KindInteger, Wide: true, Generated: true},

	"float4":  {Kind: schema.KindFloat},
	"float8":  {Kind: schema.KindFloat},
	"numeric": {Kind: schema.KindDecimal},
	"decimal": {Kind: schema.KindDecimal},

	"text":    {Kind: schema.KindText},
	"varchar": {Kind: schema.KindText},
	"bpchar":  {Kind: schema.KindText},
	"char":    {Kind: schema.KindText},
	"name":    {Kind: schema.KindText},
	"citext":  {Kind: schema.KindText},
	"money":   {Kind: schema.KindText},
	"xml":     {Kind: schema.KindText},
	"inet":    {Kind: schema.KindText},
	"cidr":    {Kind: schema.KindText},
	"macaddr": {Kind: schema.KindText},
	"time":    {Kind: schema.KindText},
	"timetz":  {Kind: schema.KindText},

	"date":        {Kind: schema.KindDate},
	"timestamp":   {Kind: schema.KindTimestamp},
	"timestamptz": {Kind: schema.KindTimestampTZ},

	"json":  {Kind: schema.KindJSON},
	"jsonb": {Kind: schema.KindJSON},
	"bytea": {Kind: schema.KindBinary},
	"uuid":  {Kind: schema.KindUUID},
}
