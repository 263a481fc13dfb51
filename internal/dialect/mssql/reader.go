package mssql

import (
	"context"
	"fmt"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/schema"
)

// Reader implements catalog.Reader for SQL Server using the sys catalog
// views. User-defined alias types are reported as domains.
type Reader struct {
	q database.Querier
}

// NewReader creates a Reader issuing its queries through q.
func NewReader(q database.Querier) *Reader {
	return &Reader{q: q}
}

// CurrentSchema returns the default schema of the connected user.
func (r *Reader) CurrentSchema(ctx context.Context) (string, error) {
	var s string
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SCHEMA_NAME(), '')`).Scan(&s); err != nil {
		return "", database.Classify(err, "current schema")
	}
	return s, nil
}

// ListTables returns user tables and views ordered by schema and name.
func (r *Reader) ListTables(ctx context.Context, filter catalog.SchemaFilter) ([]catalog.TableDescriptor, error) {
	q := `
		SELECT s.name, o.name, RTRIM(o.type)
		FROM sys.objects o
		JOIN sys.schemas s ON s.schema_id = o.schema_id
		WHERE o.type IN ('U', 'V')
		  AND o.is_ms_shipped = 0`
	clause, args := database.InClause(database.PlaceholderAt, "s.name", filter.Schemas, 1)
	if clause != "" {
		q += `
		  AND ` + clause
	}
	q += `
		ORDER BY s.name, o.name`

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]catalog.TableDescriptor, 0)
	for rows.Next() {
		var t catalog.TableDescriptor
		var typ string
		if err := rows.Scan(&t.Schema, &t.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if typ == "V" {
			t.Kind = schema.KindView
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListColumns returns columns in column_id order. Identity, computed and
// rowversion columns count as having a default.
func (r *Reader) ListColumns(ctx context.Context, table catalog.TableDescriptor) ([]catalog.ColumnDescriptor, error) {
	const q = `
		SELECT c.name,
		       ts.name,
		       t.name,
		       t.is_user_defined,
		       c.is_nullable,
		       CAST(CASE WHEN c.default_object_id <> 0
		                   OR c.is_identity = 1
		                   OR c.is_computed = 1
		                   OR t.name IN ('timestamp', 'rowversion')
		            THEN 1 ELSE 0 END AS bit),
		       CAST(CASE WHEN EXISTS (
		                SELECT 1
		                FROM sys.index_columns ic
		                JOIN sys.indexes i ON i.object_id = ic.object_id AND i.index_id = ic.index_id
		                WHERE i.is_primary_key = 1
		                  AND ic.object_id = c.object_id
		                  AND ic.column_id = c.column_id
		            ) THEN 1 ELSE 0 END AS bit)
		FROM sys.columns c
		JOIN sys.types t ON t.user_type_id = c.user_type_id
		JOIN sys.schemas ts ON ts.schema_id = t.schema_id
		WHERE c.object_id = OBJECT_ID(QUOTENAME(@p1) + '.' + QUOTENAME(@p2))
		ORDER BY c.column_id`

	rows, err := r.q.Query(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s.%s: %w", table.Schema, table.Name, err)
	}
	defer rows.Close()

	cols := make([]catalog.ColumnDescriptor, 0)
	for rows.Next() {
		var c catalog.ColumnDescriptor
		var typeSchema, typeName string
		var userDefined bool
		if err := rows.Scan(&c.Name, &typeSchema, &typeName, &userDefined, &c.IsNullable, &c.HasDefault, &c.IsPrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Type = catalog.TypeRef{Name: typeName}
		if userDefined {
			c.Type = catalog.TypeRef{Schema: typeSchema, Name: typeName, Kind: catalog.TypeDomain}
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// ListEnums returns nothing: SQL Server has no enum types.
func (r *Reader) ListEnums(context.Context) ([]schema.QualifiedName, error) {
	return []schema.QualifiedName{}, nil
}

func (r *Reader) ListEnumLabels(context.Context, schema.QualifiedName) ([]string, error) {
	return []string{}, nil
}

// ListDomains returns user-defined alias types with their system base type.
func (r *Reader) ListDomains(ctx context.Context) ([]catalog.DomainDescriptor, error) {
	const q = `
		SELECT s.name, t.name, bt.name
		FROM sys.types t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		JOIN sys.types bt ON bt.user_type_id = t.system_type_id
		WHERE t.is_user_defined = 1
		  AND t.is_table_type = 0
		ORDER BY s.name, t.name`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	domains := make([]catalog.DomainDescriptor, 0)
	for rows.Next() {
		var d catalog.DomainDescriptor
		var base string
		if err := rows.Scan(&d.Schema, &d.Name, &base); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.Base = catalog.TypeRef{Name: base}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domains, nil
}
