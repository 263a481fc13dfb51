// Package override replaces inferred column types with user supplied ones.
package override

import (
	"sort"

	"github.com/koustreak/typegen/internal/schema"
)

// Overrides maps dotted column paths to literal type expressions. A path is
// either "schema.table.column" or "table.column"; the qualified form wins.
type Overrides struct {
	Columns map[string]string
}

// Empty reports whether there is nothing to apply.
func (o Overrides) Empty() bool {
	return len(o.Columns) == 0
}

// Apply returns a new model where every matched column has a schema.Literal
// type. Paths that match nothing are ignored so configs survive schema drift.
// Enums no column refers to any more are dropped.
func Apply(m *schema.Model, o Overrides) (*schema.Model, error) {
	if o.Empty() {
		return m, nil
	}

	referenced := make(map[schema.QualifiedName]bool)
	tables := m.Tables()
	for ti := range tables {
		t := &tables[ti]
		for ci := range t.Columns {
			if expr, ok := o.lookup(t.Name, t.Columns[ci].Name); ok {
				t.Columns[ci].Type = schema.Literal{Expr: expr}
			}
			markEnums(t.Columns[ci].Type, referenced)
		}
	}

	var enums []schema.EnumType
	for _, e := range m.Enums() {
		if referenced[e.Name] {
			enums = append(enums, e)
		}
	}
	return schema.New(tables, enums, m.DefaultSchemas())
}

func markEnums(t schema.ColumnType, seen map[schema.QualifiedName]bool) {
	switch v := t.(type) {
	case schema.EnumRef:
		seen[v.Enum] = true
	case schema.ArrayOf:
		markEnums(v.Elem, seen)
	}
}

// Unmatched lists override paths that name no column of m, sorted.
func Unmatched(m *schema.Model, o Overrides) []string {
	used := make(map[string]bool, len(o.Columns))
	for _, t := range m.Tables() {
		for _, c := range t.Columns {
			used[t.Name.String()+"."+c.Name] = true
			used[t.Name.Name+"."+c.Name] = true
		}
	}

	var out []string
	for k := range o.Columns {
		if !used[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (o Overrides) lookup(table schema.QualifiedName, column string) (string, bool) {
	if expr, ok := o.Columns[table.String()+"."+column]; ok {
		return expr, true
	}
	expr, ok := o.Columns[table.Name+"."+column]
	return expr, ok
}
