package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database/sqldb"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
)

func newMock(t *testing.T) (*Reader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReader(sqldb.New(db, Options())), mock
}

func TestReader_ListTables(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`FROM information_schema.tables`).
		WithArgs("app").
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name", "table_type"}).
			AddRow("app", "orders", "BASE TABLE").
			AddRow("app", "order_totals", "VIEW"))

	tables, err := r.ListTables(context.Background(), catalog.SchemaFilter{Schemas: []string{"app"}})
	require.NoError(t, err)
	assert.Equal(t, []catalog.TableDescriptor{
		{Schema: "app", Name: "orders", Kind: schema.KindTable},
		{Schema: "app", Name: "order_totals", Kind: schema.KindView},
	}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func enumColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "column_type"})
}

func TestReader_ListColumnsLiftsEnums(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`WHERE data_type = 'enum'`).
		WillReturnRows(enumColumns().AddRow("app", "orders", "state", "enum('new','paid')"))
	mock.ExpectQuery(`FROM information_schema.columns c`).
		WithArgs("app", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "has_default", "is_primary_key"}).
			AddRow("id", "bigint", false, true, true).
			AddRow("state", "enum", true, false, false).
			AddRow("total", "decimal", false, false, false))

	cols, err := r.ListColumns(context.Background(), catalog.TableDescriptor{Schema: "app", Name: "orders"})
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, catalog.ColumnDescriptor{
		Name: "id", Type: catalog.TypeRef{Name: "bigint"}, HasDefault: true, IsPrimaryKey: true,
	}, cols[0])
	assert.Equal(t, catalog.TypeRef{Schema: "app", Name: "orders_state", Kind: catalog.TypeEnum}, cols[1].Type)
	assert.True(t, cols[1].IsNullable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_Enums(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`WHERE data_type = 'enum'`).
		WillReturnRows(enumColumns().AddRow("app", "orders", "state", "enum('new','it''s paid','shipped')"))

	enums, err := r.ListEnums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []schema.QualifiedName{schema.Q("app", "orders_state")}, enums)

	labels, err := r.ListEnumLabels(context.Background(), enums[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "it's paid", "shipped"}, labels)
	assert.NoError(t, mock.ExpectationsWereMet(), "enum columns are read once")

	_, err = r.ListEnumLabels(context.Background(), schema.Q("app", "missing"))
	assert.True(t, errs.IsNotFound(err))
}

func TestReader_EnumNamesFromDifferentColumnsStayDistinct(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`WHERE data_type = 'enum'`).
		WillReturnRows(enumColumns().
			AddRow("app", "a", "b_c", "enum('x','y')").
			AddRow("app", "a_b", "c", "enum('p','q')"))
	mock.ExpectQuery(`FROM information_schema.columns c`).
		WithArgs("app", "a_b").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "has_default", "is_primary_key"}).
			AddRow("c", "enum", false, false, false))

	ctx := context.Background()
	cols, err := r.ListColumns(ctx, catalog.TableDescriptor{Schema: "app", Name: "a_b"})
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeRef{Schema: "app", Name: "a_b_c_2", Kind: catalog.TypeEnum}, cols[0].Type)

	enums, err := r.ListEnums(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.QualifiedName{schema.Q("app", "a_b_c"), schema.Q("app", "a_b_c_2")}, enums)

	first, err := r.ListEnumLabels(ctx, enums[0])
	require.NoError(t, err)
	second, err := r.ListEnumLabels(ctx, enums[1])
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, first)
	assert.Equal(t, []string{"p", "q"}, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_NoDomains(t *testing.T) {
	r, _ := newMock(t)
	domains, err := r.ListDomains(context.Background())
	require.NoError(t, err)
	assert.Empty(t, domains)
}

func TestReader_MapsDriverErrors(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnError(&gomysql.MySQLError{Number: 1142, Message: "SELECT command denied"})

	_, err := r.ListTables(context.Background(), catalog.SchemaFilter{})
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
}

func TestParseEnumLabels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`enum('a','b')`, []string{"a", "b"}},
		{`enum('it''s','x,y')`, []string{"it's", "x,y"}},
		{`enum('back\\slash')`, []string{`back\slash`}},
		{`enum('')`, []string{""}},
		{`varchar(10)`, []string{}},
		{`enum`, []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEnumLabels(tt.in), tt.in)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"access denied", &gomysql.MySQLError{Number: 1045}, errs.ErrKindPermissionDenied},
		{"unknown database", &gomysql.MySQLError{Number: 1049}, errs.ErrKindConnectionFailed},
		{"syntax", &gomysql.MySQLError{Number: 1064}, errs.ErrKindQueryFailed},
		{"statement timeout", &gomysql.MySQLError{Number: 3024}, errs.ErrKindTimeout},
		{"dial", errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"), errs.ErrKindConnectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapError(tt.err, "x").Kind)
		})
	}
}

func TestDSN(t *testing.T) {
	dsn, err := DSN("mysql://root:secret@db:3307/app")
	require.NoError(t, err)
	assert.Equal(t, "root:secret@tcp(db:3307)/app", dsn)

	dsn, err = DSN("mysql://root@localhost/app?timeout=5s")
	require.NoError(t, err)
	assert.Contains(t, dsn, "root@tcp(localhost:3306)/app")
	assert.Contains(t, dsn, "timeout=5s")

	native := "root:secret@tcp(db:3306)/app"
	dsn, err = DSN(native)
	require.NoError(t, err)
	assert.Equal(t, native, dsn)
}
