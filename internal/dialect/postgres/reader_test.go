package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/typegen/internal/catalog"
	pgdb "github.com/koustreak/typegen/internal/database/postgres"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
)

func newMock(t *testing.T) (*Reader, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewReader(pgdb.NewWithPool(mock)), mock
}

func tableRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"nspname", "relname", "relkind", "parent_schema", "parent_name"})
}

func columnRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"attname", "type_schema", "typname", "typtype",
		"elem_schema", "elem_name", "elem_typtype",
		"nullable", "has_default", "is_primary_key",
	})
}

func TestReader_ListTables(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`FROM pg_catalog.pg_class`).
		WithArgs().
		WillReturnRows(tableRows().
			AddRow("cli", "users", "r", "", "").
			AddRow("public", "events", "p", "", "").
			AddRow("public", "events_2024", "r", "public", "events").
			AddRow("public", "active_users", "v", "", "").
			AddRow("public", "stats", "m", "", ""))

	tables, err := r.ListTables(context.Background(), catalog.SchemaFilter{})
	require.NoError(t, err)
	require.Len(t, tables, 5)

	assert.Equal(t, schema.KindTable, tables[0].Kind)
	assert.Nil(t, tables[0].PartitionOf)
	assert.Equal(t, &schema.QualifiedName{Schema: "public", Name: "events"}, tables[2].PartitionOf)
	assert.Equal(t, schema.KindView, tables[3].Kind)
	assert.Equal(t, schema.KindMaterializedView, tables[4].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ListTablesFiltersSchemas(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`AND n.nspname IN ($1, $2)`)).
		WithArgs("cli", "audit").
		WillReturnRows(tableRows().AddRow("cli", "users", "r", "", ""))

	tables, err := r.ListTables(context.Background(), catalog.SchemaFilter{Schemas: []string{"cli", "audit"}})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "users", tables[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ListColumns(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`FROM pg_catalog.pg_attribute`).
		WithArgs("cli", "users").
		WillReturnRows(columnRows().
			AddRow("status", "cli", "status", "e", "", "", "", true, false, false).
			AddRow("user_id", "pg_catalog", "int4", "b", "", "", "", false, true, true).
			AddRow("tags", "pg_catalog", "_status", "b", "cli", "status", "e", false, false, false).
			AddRow("email", "cli", "email", "d", "", "", "", true, false, false))

	cols, err := r.ListColumns(context.Background(), catalog.TableDescriptor{Schema: "cli", Name: "users"})
	require.NoError(t, err)
	require.Len(t, cols, 4)

	assert.Equal(t, catalog.ColumnDescriptor{
		Name:       "status",
		Type:       catalog.TypeRef{Schema: "cli", Name: "status", Kind: catalog.TypeEnum},
		IsNullable: true,
	}, cols[0])
	assert.Equal(t, catalog.ColumnDescriptor{
		Name:         "user_id",
		Type:         catalog.TypeRef{Schema: "pg_catalog", Name: "int4"},
		HasDefault:   true,
		IsPrimaryKey: true,
	}, cols[1])
	assert.Equal(t, catalog.TypeRef{Schema: "cli", Name: "status", Kind: catalog.TypeEnum, Array: true}, cols[2].Type)
	assert.Equal(t, catalog.TypeDomain, cols[3].Type.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_EnumsAndDomains(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`t.typtype = 'e'`).
		WillReturnRows(pgxmock.NewRows([]string{"nspname", "typname"}).AddRow("cli", "status"))
	mock.ExpectQuery(`FROM pg_catalog.pg_enum`).
		WithArgs("cli", "status").
		WillReturnRows(pgxmock.NewRows([]string{"enumlabel"}).AddRow("CONFIRMED").AddRow("UNCONFIRMED"))
	mock.ExpectQuery(`t.typtype = 'd'`).
		WillReturnRows(pgxmock.NewRows([]string{"nspname", "typname", "base_schema", "base_name", "base_typtype", "elem_schema", "elem_name", "elem_typtype"}).
			AddRow("cli", "email", "pg_catalog", "text", "b", "", "", ""))

	ctx := context.Background()
	enums, err := r.ListEnums(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.QualifiedName{schema.Q("cli", "status")}, enums)

	labels, err := r.ListEnumLabels(ctx, enums[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"CONFIRMED", "UNCONFIRMED"}, labels)

	domains, err := r.ListDomains(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.DomainDescriptor{
		{Schema: "cli", Name: "email", Base: catalog.TypeRef{Schema: "pg_catalog", Name: "text"}},
	}, domains)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_CurrentSchema(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`current_schema()`)).
		WillReturnRows(pgxmock.NewRows([]string{"current_schema"}).AddRow("public"))

	s, err := r.CurrentSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "public", s)
}

func TestReader_PropagatesCatalogErrors(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`FROM pg_catalog.pg_class`).
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table pg_class"})

	_, err := r.ListTables(context.Background(), catalog.SchemaFilter{})
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
	assert.True(t, errs.IsCatalog(err))
}

func TestTypes(t *testing.T) {
	assert.True(t, Types["serial"].Generated)
	assert.True(t, Types["int8"].Wide)
	assert.Equal(t, schema.KindTimestampTZ, Types["timestamptz"].Kind)
	assert.Equal(t, "postgres", Dialect{}.Name())
}
