package catalog

import (
	"context"
	"fmt"

	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
)

// Enum is an enum with its labels in declaration order.
type Enum struct {
	Name   schema.QualifiedName
	Labels []string
}

// Table pairs a relation with its columns.
type Table struct {
	TableDescriptor
	Columns []ColumnDescriptor
}

// Snapshot is everything read from the catalog in one pass. Order of every
// slice is the order the reader returned it in.
type Snapshot struct {
	CurrentSchema string
	Tables        []Table
	Enums         []Enum
	Domains       []DomainDescriptor
}

// Domain finds a domain by qualified name.
func (s *Snapshot) Domain(name schema.QualifiedName) (DomainDescriptor, bool) {
	for _, d := range s.Domains {
		if d.Schema == name.Schema && d.Name == name.Name {
			return d, true
		}
	}
	return DomainDescriptor{}, false
}

// Read collects a full snapshot from r. It is all-or-nothing: the first
// failure aborts and no partial snapshot is returned. Callers wanting a
// consistent view run Read inside a single read-only transaction.
func Read(ctx context.Context, r Reader, filter SchemaFilter) (*Snapshot, error) {
	current, err := r.CurrentSchema(ctx)
	if err != nil {
		return nil, ensureCatalog(err, "read current schema")
	}

	descs, err := r.ListTables(ctx, filter)
	if err != nil {
		return nil, ensureCatalog(err, "list tables")
	}

	snap := &Snapshot{CurrentSchema: current, Tables: make([]Table, 0, len(descs))}
	for _, d := range descs {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrKindTimeout, "catalog read cancelled", err)
		}
		cols, err := r.ListColumns(ctx, d)
		if err != nil {
			return nil, ensureCatalog(err, fmt.Sprintf("list columns of %s", d.QualifiedName()))
		}
		snap.Tables = append(snap.Tables, Table{TableDescriptor: d, Columns: cols})
	}

	names, err := r.ListEnums(ctx)
	if err != nil {
		return nil, ensureCatalog(err, "list enums")
	}
	snap.Enums = make([]Enum, 0, len(names))
	for _, n := range names {
		labels, err := r.ListEnumLabels(ctx, n)
		if err != nil {
			return nil, ensureCatalog(err, fmt.Sprintf("list labels of enum %s", n))
		}
		snap.Enums = append(snap.Enums, Enum{Name: n, Labels: labels})
	}

	if snap.Domains, err = r.ListDomains(ctx); err != nil {
		return nil, ensureCatalog(err, "list domains")
	}

	return snap, nil
}

// ensureCatalog makes sure a reader failure is reported as a catalog error.
func ensureCatalog(err error, msg string) error {
	if errs.IsCatalog(err) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
