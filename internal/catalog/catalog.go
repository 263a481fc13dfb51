// Package catalog describes the raw metadata a dialect reader returns and
// collects it into a single consistent Snapshot.
package catalog

import (
	"context"

	"github.com/koustreak/typegen/internal/schema"
)

// TypeKind tells the type mapper how to interpret a TypeRef.
type TypeKind int

const (
	TypeBase TypeKind = iota
	TypeEnum
	TypeDomain
)

// TypeRef is a column type exactly as the catalog reports it.
type TypeRef struct {
	Schema string // owning schema for user-defined types; empty for built-ins
	Name   string // raw type name, e.g. "int4", "varchar(255)", "status"
	Array  bool   // one-dimensional array of Name
	Kind   TypeKind
}

// Qualified returns the schema-qualified type name.
func (t TypeRef) Qualified() schema.QualifiedName {
	return schema.Q(t.Schema, t.Name)
}

// Raw renders the reference the way it is preserved in unknown aliases.
func (t TypeRef) Raw() string {
	name := t.Name
	if t.Schema != "" && t.Kind != TypeBase {
		name = t.Schema + "." + t.Name
	}
	if t.Array {
		name += "[]"
	}
	return name
}

// TableDescriptor is one relation returned by ListTables.
type TableDescriptor struct {
	Schema      string
	Name        string
	Kind        schema.TableKind
	PartitionOf *schema.QualifiedName // parent table when this is a partition child
}

// QualifiedName returns schema.name for the table.
func (t TableDescriptor) QualifiedName() schema.QualifiedName {
	return schema.Q(t.Schema, t.Name)
}

// ColumnDescriptor is one column returned by ListColumns, in catalog order.
type ColumnDescriptor struct {
	Name         string
	Type         TypeRef
	IsNullable   bool
	HasDefault   bool
	IsPrimaryKey bool
}

// DomainDescriptor is a named constraint over a base type.
type DomainDescriptor struct {
	Schema string
	Name   string
	Base   TypeRef
}

// SchemaFilter narrows ListTables. An empty Schemas means every user schema.
type SchemaFilter struct {
	Schemas []string
}

// Reader is the per-dialect catalog capability. Errors are catalog-class
// *errs.Error values carrying the driver error as cause.
type Reader interface {
	CurrentSchema(ctx context.Context) (string, error)
	ListTables(ctx context.Context, filter SchemaFilter) ([]TableDescriptor, error)
	ListColumns(ctx context.Context, table TableDescriptor) ([]ColumnDescriptor, error)
	ListEnums(ctx context.Context) ([]schema.QualifiedName, error)
	ListEnumLabels(ctx context.Context, enum schema.QualifiedName) ([]string, error)
	ListDomains(ctx context.Context) ([]DomainDescriptor, error)
}
