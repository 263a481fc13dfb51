// Package schema holds the canonical, dialect-independent Schema Model built
// by the normalizer and consumed read-only by every later stage.
package schema

import (
	"fmt"
	"slices"

	"github.com/koustreak/typegen/internal/errs"
)

// TableKind distinguishes tables from views.
type TableKind int

const (
	KindTable TableKind = iota
	KindView
	KindMaterializedView
)

func (k TableKind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindMaterializedView:
		return "materialized-view"
	default:
		return "table"
	}
}

// Column is one column of a Table.
type Column struct {
	Name         string // raw catalog identifier
	Type         ColumnType
	Nullable     bool
	HasDefault   bool // server-side default, serial, identity or generated
	IsPrimaryKey bool
}

// Table is a table or view with its columns in catalog order.
type Table struct {
	Name    QualifiedName
	Kind    TableKind
	Columns []Column
}

// EnumType is an enumerated type. Labels keep catalog declaration order;
// reordering labels in the database changes generated output.
type EnumType struct {
	Name   QualifiedName
	Labels []string
}

// Model is the immutable canonical schema. Build it with New; stages that
// change it return a new Model.
type Model struct {
	tables         []Table
	enums          []EnumType
	defaultSchemas []string
	tableIdx       map[QualifiedName]int
	enumIdx        map[QualifiedName]int
}

// New validates and freezes a model. Every EnumRef, including those nested in
// arrays, must name one of enums; otherwise an unresolved enum reference
// error is returned and no model is produced.
func New(tables []Table, enums []EnumType, defaultSchemas []string) (*Model, error) {
	m := &Model{
		tables:         cloneTables(tables),
		enums:          cloneEnums(enums),
		defaultSchemas: slices.Clone(defaultSchemas),
		tableIdx:       make(map[QualifiedName]int, len(tables)),
		enumIdx:        make(map[QualifiedName]int, len(enums)),
	}

	for i, e := range m.enums {
		if _, dup := m.enumIdx[e.Name]; dup {
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("duplicate enum %s", e.Name))
		}
		m.enumIdx[e.Name] = i
	}

	for i, t := range m.tables {
		if _, dup := m.tableIdx[t.Name]; dup {
			return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("duplicate table %s", t.Name))
		}
		m.tableIdx[t.Name] = i

		for _, c := range t.Columns {
			if ref, ok := enumRefOf(c.Type); ok {
				if _, found := m.enumIdx[ref.Enum]; !found {
					return nil, errs.UnresolvedEnum(t.Name.String()+"."+c.Name, ref.Enum.String())
				}
			}
		}
	}

	return m, nil
}

// Tables returns a copy of the tables in model order.
func (m *Model) Tables() []Table {
	return cloneTables(m.tables)
}

// Enums returns a copy of the enums in model order.
func (m *Model) Enums() []EnumType {
	return cloneEnums(m.enums)
}

// DefaultSchemas returns the schemas whose objects are named without a prefix.
func (m *Model) DefaultSchemas() []string {
	return slices.Clone(m.defaultSchemas)
}

// IsDefaultSchema reports whether s is one of the default schemas.
func (m *Model) IsDefaultSchema(s string) bool {
	return slices.Contains(m.defaultSchemas, s)
}

// Table looks up a table by qualified name.
func (m *Model) Table(name QualifiedName) (Table, bool) {
	i, ok := m.tableIdx[name]
	if !ok {
		return Table{}, false
	}
	return cloneTable(m.tables[i]), true
}

// Enum looks up an enum by qualified name.
func (m *Model) Enum(name QualifiedName) (EnumType, bool) {
	i, ok := m.enumIdx[name]
	if !ok {
		return EnumType{}, false
	}
	return EnumType{Name: m.enums[i].Name, Labels: slices.Clone(m.enums[i].Labels)}, true
}

// enumRefOf finds the EnumRef inside t, looking through arrays.
func enumRefOf(t ColumnType) (EnumRef, bool) {
	switch v := t.(type) {
	case EnumRef:
		return v, true
	case ArrayOf:
		return enumRefOf(v.Elem)
	}
	return EnumRef{}, false
}

func cloneTables(in []Table) []Table {
	out := make([]Table, len(in))
	for i, t := range in {
		out[i] = cloneTable(t)
	}
	return out
}

func cloneTable(t Table) Table {
	t.Columns = slices.Clone(t.Columns)
	return t
}

func cloneEnums(in []EnumType) []EnumType {
	out := make([]EnumType, len(in))
	for i, e := range in {
		out[i] = EnumType{Name: e.Name, Labels: slices.Clone(e.Labels)}
	}
	return out
}
