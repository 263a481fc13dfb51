package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/schema"
)

// MainSchema is the only schema a SQLite connection reads.
const MainSchema = "main"

// Reader implements catalog.Reader over sqlite_master and pragma_table_info.
type Reader struct {
	q database.Querier
}

// NewReader creates a Reader issuing its queries through q.
func NewReader(q database.Querier) *Reader {
	return &Reader{q: q}
}

func (r *Reader) CurrentSchema(context.Context) (string, error) {
	return MainSchema, nil
}

// ListTables returns user tables and views ordered by name.
func (r *Reader) ListTables(ctx context.Context, filter catalog.SchemaFilter) ([]catalog.TableDescriptor, error) {
	tables := make([]catalog.TableDescriptor, 0)
	if len(filter.Schemas) > 0 && !slices.Contains(filter.Schemas, MainSchema) {
		return tables, nil
	}

	const q = `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t := catalog.TableDescriptor{Schema: MainSchema}
		var typ string
		if err := rows.Scan(&t.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if typ == "view" {
			t.Kind = schema.KindView
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListColumns returns columns in declaration order. A lone INTEGER PRIMARY
// KEY aliases the rowid, so it is never null and always has a value. Other
// primary key columns stay nullable unless declared NOT NULL.
func (r *Reader) ListColumns(ctx context.Context, table catalog.TableDescriptor) ([]catalog.ColumnDescriptor, error) {
	const q = `
		SELECT name, type, "notnull", dflt_value IS NOT NULL, pk
		FROM pragma_table_info(?)
		ORDER BY cid`

	rows, err := r.q.Query(ctx, q, table.Name)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table.Name, err)
	}
	defer rows.Close()

	cols := make([]catalog.ColumnDescriptor, 0)
	pkCols := 0
	rowid := -1
	for rows.Next() {
		var c catalog.ColumnDescriptor
		var typ string
		var notNull, pk int64
		if err := rows.Scan(&c.Name, &typ, &notNull, &c.HasDefault, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Type = catalog.TypeRef{Name: typ}
		c.IsNullable = notNull == 0
		c.IsPrimaryKey = pk > 0
		if pk > 0 {
			pkCols++
			if strings.EqualFold(strings.TrimSpace(typ), "integer") {
				rowid = len(cols)
			}
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pkCols == 1 && rowid >= 0 && table.Kind == schema.KindTable {
		cols[rowid].HasDefault = true
		cols[rowid].IsNullable = false
	}
	return cols, nil
}

func (r *Reader) ListEnums(context.Context) ([]schema.QualifiedName, error) {
	return []schema.QualifiedName{}, nil
}

func (r *Reader) ListEnumLabels(context.Context, schema.QualifiedName) ([]string, error) {
	return []string{}, nil
}

func (r *Reader) ListDomains(context.Context) ([]catalog.DomainDescriptor, error) {
	return []catalog.DomainDescriptor{}, nil
}
