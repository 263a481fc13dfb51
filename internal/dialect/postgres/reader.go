package postgres

import (
	"context"
	"fmt"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/schema"
)

// Reader implements catalog.Reader for PostgreSQL using pg_catalog.
type Reader struct {
	q database.Querier
}

// NewReader creates a Reader issuing its queries through q.
func NewReader(q database.Querier) *Reader {
	return &Reader{q: q}
}

// CurrentSchema returns the first schema of the search path.
func (r *Reader) CurrentSchema(ctx context.Context) (string, error) {
	var s string
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(current_schema(), '')`).Scan(&s); err != nil {
		return "", database.Classify(err, "current schema")
	}
	return s, nil
}

// ListTables returns tables, partitioned tables, views and materialized views
// outside the system schemas, ordered by schema and name.
func (r *Reader) ListTables(ctx context.Context, filter catalog.SchemaFilter) ([]catalog.TableDescriptor, error) {
	q := `
		SELECT n.nspname,
		       c.relname,
		       c.relkind::text,
		       COALESCE(pn.nspname, ''),
		       COALESCE(pc.relname, '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_catalog.pg_inherits i ON i.inhrelid = c.oid AND c.relispartition
		LEFT JOIN pg_catalog.pg_class pc ON pc.oid = i.inhparent
		LEFT JOIN pg_catalog.pg_namespace pn ON pn.oid = pc.relnamespace
		WHERE c.relkind IN ('r', 'p', 'v', 'm')
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
		  AND n.nspname NOT LIKE 'pg\_toast%'
		  AND n.nspname NOT LIKE 'pg\_temp\_%'`
	clause, args := database.InClause(database.PlaceholderDollar, "n.nspname", filter.Schemas, 1)
	if clause != "" {
		q += `
		  AND ` + clause
	}
	q += `
		ORDER BY n.nspname, c.relname`

	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := make([]catalog.TableDescriptor, 0)
	for rows.Next() {
		var t catalog.TableDescriptor
		var relkind, parentSchema, parentName string
		if err := rows.Scan(&t.Schema, &t.Name, &relkind, &parentSchema, &parentName); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.Kind = tableKind(relkind)
		if parentName != "" {
			parent := schema.Q(parentSchema, parentName)
			t.PartitionOf = &parent
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListColumns returns the live columns of a relation in attnum order.
func (r *Reader) ListColumns(ctx context.Context, table catalog.TableDescriptor) ([]catalog.ColumnDescriptor, error) {
	const q = `
		SELECT a.attname,
		       tn.nspname,
		       t.typname,
		       t.typtype::text,
		       COALESCE(en.nspname, ''),
		       COALESCE(et.typname, ''),
		       COALESCE(et.typtype::text, ''),
		       NOT a.attnotnull,
		       a.atthasdef OR a.attidentity <> '' OR a.attgenerated <> '',
		       EXISTS (
		           SELECT 1 FROM pg_catalog.pg_index ix
		           WHERE ix.indrelid = a.attrelid
		             AND ix.indisprimary
		             AND a.attnum = ANY(ix.indkey)
		       )
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
		JOIN pg_catalog.pg_namespace tn ON tn.oid = t.typnamespace
		LEFT JOIN pg_catalog.pg_type et ON et.oid = t.typelem AND t.typcategory = 'A'
		LEFT JOIN pg_catalog.pg_namespace en ON en.oid = et.typnamespace
		WHERE n.nspname = $1
		  AND c.relname = $2
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		ORDER BY a.attnum`

	rows, err := r.q.Query(ctx, q, table.Schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("list columns %s.%s: %w", table.Schema, table.Name, err)
	}
	defer rows.Close()

	cols := make([]catalog.ColumnDescriptor, 0)
	for rows.Next() {
		var c catalog.ColumnDescriptor
		var t typeRow
		if err := rows.Scan(
			&c.Name,
			&t.schema, &t.name, &t.typtype,
			&t.elemSchema, &t.elemName, &t.elemTyptype,
			&c.IsNullable,
			&c.HasDefault,
			&c.IsPrimaryKey,
		); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Type = t.ref()
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// ListEnums returns every enum type outside the system schemas.
func (r *Reader) ListEnums(ctx context.Context) ([]schema.QualifiedName, error) {
	const q = `
		SELECT n.nspname, t.typname
		FROM pg_catalog.pg_type t
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'e'
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY n.nspname, t.typname`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list enums: %w", err)
	}
	defer rows.Close()

	enums := make([]schema.QualifiedName, 0)
	for rows.Next() {
		var n schema.QualifiedName
		if err := rows.Scan(&n.Schema, &n.Name); err != nil {
			return nil, fmt.Errorf("scan enum: %w", err)
		}
		enums = append(enums, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enums, nil
}

// ListEnumLabels returns labels in declaration order (enumsortorder).
func (r *Reader) ListEnumLabels(ctx context.Context, enum schema.QualifiedName) ([]string, error) {
	const q = `
		SELECT e.enumlabel
		FROM pg_catalog.pg_enum e
		JOIN pg_catalog.pg_type t ON t.oid = e.enumtypid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1
		  AND t.typname = $2
		ORDER BY e.enumsortorder`

	labels, err := database.QueryStrings(ctx, r.q, q, enum.Schema, enum.Name)
	if err != nil {
		return nil, fmt.Errorf("list labels of %s: %w", enum, err)
	}
	return labels, nil
}

// ListDomains returns every domain with its base type.
func (r *Reader) ListDomains(ctx context.Context) ([]catalog.DomainDescriptor, error) {
	const q = `
		SELECT n.nspname,
		       t.typname,
		       bn.nspname,
		       b.typname,
		       b.typtype::text,
		       COALESCE(en.nspname, ''),
		       COALESCE(et.typname, ''),
		       COALESCE(et.typtype::text, '')
		FROM pg_catalog.pg_type t
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		JOIN pg_catalog.pg_type b ON b.oid = t.typbasetype
		JOIN pg_catalog.pg_namespace bn ON bn.oid = b.typnamespace
		LEFT JOIN pg_catalog.pg_type et ON et.oid = b.typelem AND b.typcategory = 'A'
		LEFT JOIN pg_catalog.pg_namespace en ON en.oid = et.typnamespace
		WHERE t.typtype = 'd'
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
		ORDER BY n.nspname, t.typname`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	domains := make([]catalog.DomainDescriptor, 0)
	for rows.Next() {
		var d catalog.DomainDescriptor
		var t typeRow
		if err := rows.Scan(
			&d.Schema, &d.Name,
			&t.schema, &t.name, &t.typtype,
			&t.elemSchema, &t.elemName, &t.elemTyptype,
		); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.Base = t.ref()
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domains, nil
}

// typeRow is a pg_type row plus its array element, if any.
type typeRow struct {
	schema, name, typtype             string
	elemSchema, elemName, elemTyptype string
}

func (t typeRow) ref() catalog.TypeRef {
	if t.elemName != "" {
		return catalog.TypeRef{Schema: t.elemSchema, Name: t.elemName, Kind: typeKind(t.elemTyptype), Array: true}
	}
	return catalog.TypeRef{Schema: t.schema, Name: t.name, Kind: typeKind(t.typtype)}
}

func typeKind(typtype string) catalog.TypeKind {
	switch typtype {
	case "e":
		return catalog.TypeEnum
	case "d":
		return catalog.TypeDomain
	default:
		return catalog.TypeBase
	}
}

func tableKind(relkind string) schema.TableKind {
	switch relkind {
	case "v":
		return schema.KindView
	case "m":
		return schema.KindMaterializedView
	default:
		return schema.KindTable
	}
}
