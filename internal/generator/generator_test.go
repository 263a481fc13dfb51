package generator

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgdb "github.com/koustreak/typegen/internal/database/postgres"
	"github.com/koustreak/typegen/internal/dialect/postgres"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/naming"
	"github.com/koustreak/typegen/internal/normalize"
	"github.com/koustreak/typegen/internal/override"
	"github.com/koustreak/typegen/internal/typemap"
)

var snapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func newMock(t *testing.T) (*pgdb.Driver, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return pgdb.NewWithPool(mock), mock
}

// cliCatalog expects one snapshot transaction answering pg_catalog with
// the cli.users table and its status enum.
func cliCatalog(t *testing.T) (*pgdb.Driver, pgxmock.PgxPoolIface) {
	t.Helper()
	db, mock := newMock(t)
	mock.ExpectBeginTx(snapshotTx)
	mock.ExpectQuery(regexp.QuoteMeta(`current_schema()`)).
		WillReturnRows(pgxmock.NewRows([]string{"current_schema"}).AddRow("cli"))
	mock.ExpectQuery(`FROM pg_catalog.pg_class`).
		WillReturnRows(pgxmock.NewRows([]string{"nspname", "relname", "relkind", "parent_schema", "parent_name"}).
			AddRow("cli", "users", "r", "", ""))
	mock.ExpectQuery(`FROM pg_catalog.pg_attribute`).
		WithArgs("cli", "users").
		WillReturnRows(pgxmock.NewRows([]string{
			"attname", "type_schema", "typname", "typtype",
			"elem_schema", "elem_name", "elem_typtype",
			"nullable", "has_default", "is_primary_key",
		}).
			AddRow("status", "cli", "status", "e", "", "", "", true, false, false).
			AddRow("user_id", "pg_catalog", "int4", "b", "", "", "", false, true, true))
	mock.ExpectQuery(`t.typtype = 'e'`).
		WillReturnRows(pgxmock.NewRows([]string{"nspname", "typname"}).AddRow("cli", "status"))
	mock.ExpectQuery(`FROM pg_catalog.pg_enum`).
		WithArgs("cli", "status").
		WillReturnRows(pgxmock.NewRows([]string{"enumlabel"}).AddRow("CONFIRMED").AddRow("UNCONFIRMED"))
	mock.ExpectQuery(`t.typtype = 'd'`).
		WillReturnRows(pgxmock.NewRows([]string{"nspname", "typname", "base_schema", "base_name", "base_typtype", "elem_schema", "elem_name", "elem_typtype"}))
	mock.ExpectCommit()
	return db, mock
}

func cliOptions() Options {
	return Options{
		Types:        typemap.DefaultPolicy(),
		Filters:      normalize.Filters{Domains: true},
		Naming:       naming.Policy{CamelCase: true, Singular: true, TypeOnlyImports: true},
		RuntimeEnums: true,
		EnumStyle:    naming.StylePascal,
	}
}

const cliUsers = `/**
 * This file was generated by typegen.
 * Please do not edit it manually.
 */

import type { ColumnType } from "kysely";

export type Generated<T> = T extends ColumnType<infer S, infer I, infer U>
  ? ColumnType<S, I | undefined, U>
  : ColumnType<T, T | undefined, T>;

export enum Status {
  Confirmed = "CONFIRMED",
  Unconfirmed = "UNCONFIRMED",
}

export interface User {
  status: Status | null;
  userId: Generated<number>;
}

export interface DB {
  users: User;
}
`

func TestGenerate_CliUsers(t *testing.T) {
	db, mock := cliCatalog(t)
	out, err := Generate(context.Background(), db, postgres.Dialect{}, cliOptions())
	require.NoError(t, err)
	assert.Equal(t, cliUsers, out)
	assert.NoError(t, mock.ExpectationsWereMet(), "every catalog query runs in one snapshot")
}

func TestGenerate_Deterministic(t *testing.T) {
	db, _ := cliCatalog(t)
	a, err := Generate(context.Background(), db, postgres.Dialect{}, cliOptions())
	require.NoError(t, err)
	db, _ = cliCatalog(t)
	b, err := Generate(context.Background(), db, postgres.Dialect{}, cliOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_Overrides(t *testing.T) {
	opts := cliOptions()
	opts.Overrides = override.Overrides{Columns: map[string]string{
		"users.status":  `"CONFIRMED" | "UNCONFIRMED" | "BANNED"`,
		"users.missing": "never",
	}}

	db, _ := cliCatalog(t)
	out, err := Generate(context.Background(), db, postgres.Dialect{}, opts)
	require.NoError(t, err)
	assert.Contains(t, out, `  status: "CONFIRMED" | "UNCONFIRMED" | "BANNED";`)
	assert.NotContains(t, out, "export enum Status", "overridden column no longer references the enum")
}

func TestGenerate_CatalogErrorIsFatal(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBeginTx(snapshotTx)
	mock.ExpectQuery(regexp.QuoteMeta(`current_schema()`)).
		WillReturnRows(pgxmock.NewRows([]string{"current_schema"}).AddRow("cli"))
	mock.ExpectQuery(`FROM pg_catalog.pg_class`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	out, err := Generate(context.Background(), db, postgres.Dialect{}, cliOptions())
	assert.Empty(t, out)
	assert.True(t, errs.IsCatalog(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "a failed snapshot is rolled back")
}

func TestOptions_SchemaFilter(t *testing.T) {
	o := Options{Filters: normalize.Filters{DefaultSchemas: []string{"cli"}}}
	assert.Equal(t, []string{"cli"}, o.SchemaFilter().Schemas)

	o.Filters.IncludePattern = "*.users"
	assert.Empty(t, o.SchemaFilter().Schemas)
}
