package mysql

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
)

// systemSchemas never contain user tables.
const systemSchemas = `('mysql', 'information_schema', 'performance_schema', 'sys')`

// Reader implements catalog.Reader for MySQL using information_schema.
// MySQL has no named enum types: every enum(...) column is exposed as a
// synthetic enum named <table>_<column> in the table's schema. When two
// columns produce the same name, later ones (in table, ordinal order) get a
// numeric suffix.
type Reader struct {
	q     database.Querier
	enums *enumIndex
}

type columnKey struct {
	schema, table, column string
}

// enumIndex holds every enum column, keyed by the column that declares it.
type enumIndex struct {
	ordered  []schema.QualifiedName
	byColumn map[columnKey]schema.QualifiedName
	byName   map[schema.QualifiedName][]string
}

func (x *enumIndex) has(name schema.QualifiedName) bool {
	_, ok := x.byName[name]
	return ok
}

// NewReader creates a Reader issuing its queries through q.
func NewReader(q database.Querier) *Reader {
	return &Reader{q: q}
}

// CurrentSchema returns the database selected by the connection.
func (r *Reader) CurrentSchema(ctx context.Context) (string, error) {
	var s string
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(DATABASE(), '')`).Scan(&s); err != nil {
		return "", database.Classify(err, "current schema")
	}
	return s, nil
}

// ListTables returns base tables and views ordered by schema and name.
func (r *Reader) ListTables(ctx context.Context, filter catalog.SchemaFilter) ([]catalog.TableDescriptor, error) {
	q := `
		SELECT table_schema, table_name, table_type
		FROM information_schema.tables
		WHERE table_schema NOT IN ` + systemSchemas
	clause, args := database.InClause(database.PlaceholderQuestion, "table_schema", filter.Schemas, 1)
	if clause != "" {
		q += `
		  AND ` + clause
	}
	q += `
		ORDER BY table_schema, table_name`

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]catalog.TableDescriptor, 0)
	for rows.Next() {
		var t catalog.TableDescriptor
		var tableType string
		if err := rows.Scan(&t.Schema, &t.Name, &tableType); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if tableType == "VIEW" || tableType == "SYSTEM VIEW" {
			t.Kind = schema.KindView
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListColumns returns column details for a single table in ordinal order.
func (r *Reader) ListColumns(ctx context.Context, table catalog.TableDescriptor) ([]catalog.ColumnDescriptor, error) {
	const q = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES'                         AS is_nullable,
			c.column_default IS NOT NULL
				OR c.extra LIKE '%auto_increment%'
				OR c.extra LIKE '%GENERATED%'             AS has_default,
			(c.column_key = 'PRI')                        AS is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = ?
		  AND c.table_name   = ?
		ORDER BY c.ordinal_position`

	// The index is loaded before the column query so the two never share
	// an open result set on the snapshot connection.
	idx, err := r.enumIndex(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.Query(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s.%s: %w", table.Schema, table.Name, err)
	}
	defer rows.Close()

	cols := make([]catalog.ColumnDescriptor, 0)
	for rows.Next() {
		var col catalog.ColumnDescriptor
		var dataType string
		if err := rows.Scan(&col.Name, &dataType, &col.IsNullable, &col.HasDefault, &col.IsPrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.Type = catalog.TypeRef{Name: dataType}
		if strings.EqualFold(dataType, "enum") {
			if name, ok := idx.byColumn[columnKey{table.Schema, table.Name, col.Name}]; ok {
				col.Type = catalog.TypeRef{Schema: name.Schema, Name: name.Name, Kind: catalog.TypeEnum}
			}
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// ListEnums returns one synthetic enum per enum column.
func (r *Reader) ListEnums(ctx context.Context) ([]schema.QualifiedName, error) {
	idx, err := r.enumIndex(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(idx.ordered), nil
}

// ListEnumLabels returns the labels of the column behind enum, parsed from
// its column_type.
func (r *Reader) ListEnumLabels(ctx context.Context, enum schema.QualifiedName) ([]string, error) {
	idx, err := r.enumIndex(ctx)
	if err != nil {
		return nil, err
	}
	labels, ok := idx.byName[enum]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("enum %s", enum))
	}
	return slices.Clone(labels), nil
}

// enumIndex reads every enum column once per Reader.
func (r *Reader) enumIndex(ctx context.Context) (*enumIndex, error) {
	if r.enums != nil {
		return r.enums, nil
	}

	const q = `
		SELECT table_schema, table_name, column_name, column_type
		FROM information_schema.columns
		WHERE data_type = 'enum'
		  AND table_schema NOT IN ` + systemSchemas + `
		ORDER BY table_schema, table_name, ordinal_position`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list enums: %w", err)
	}
	defer rows.Close()

	idx := &enumIndex{
		ordered:  make([]schema.QualifiedName, 0),
		byColumn: make(map[columnKey]schema.QualifiedName),
		byName:   make(map[schema.QualifiedName][]string),
	}
	for rows.Next() {
		var k columnKey
		var columnType string
		if err := rows.Scan(&k.schema, &k.table, &k.column, &columnType); err != nil {
			return nil, fmt.Errorf("scan enum column: %w", err)
		}

		base := enumName(k.table, k.column)
		name := schema.Q(k.schema, base)
		for i := 2; idx.has(name); i++ {
			name = schema.Q(k.schema, base+"_"+strconv.Itoa(i))
		}

		labels := ParseEnumLabels(columnType)
		idx.ordered = append(idx.ordered, name)
		idx.byColumn[k] = name
		idx.byName[name] = labels
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.enums = idx
	return idx, nil
}

// ListDomains returns nothing: MySQL has no domain types.
func (r *Reader) ListDomains(context.Context) ([]catalog.DomainDescriptor, error) {
	return []catalog.DomainDescriptor{}, nil
}

func enumName(table, column string) string {
	return table + "_" + column
}

// ParseEnumLabels extracts labels from a column type such as
// enum('a','it''s','b\\c'), preserving declaration order.
func ParseEnumLabels(columnType string) []string {
	open := strings.IndexByte(columnType, '(')
	end := strings.LastIndexByte(columnType, ')')
	if open < 0 || end <= open {
		return []string{}
	}
	body := columnType[open+1 : end]

	labels := make([]string, 0)
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case !inQuote && ch == '\'':
			inQuote = true
			cur.Reset()
		case inQuote && ch == '\\' && i+1 < len(body):
			i++
			cur.WriteByte(body[i])
		case inQuote && ch == '\'' && i+1 < len(body) && body[i+1] == '\'':
			i++
			cur.WriteByte('\'')
		case inQuote && ch == '\'':
			inQuote = false
			labels = append(labels, cur.String())
		case inQuote:
			cur.WriteByte(ch)
		}
	}
	return labels
}
