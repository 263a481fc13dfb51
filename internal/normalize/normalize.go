// Package normalize builds the canonical schema model from a catalog snapshot.
package normalize

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
	"github.com/koustreak/typegen/internal/typemap"
)

// Filters select which catalog objects reach the model.
type Filters struct {
	// DefaultSchemas are included when no include pattern is set, and their
	// objects are named without a schema prefix. Empty means the reader's
	// current schema.
	DefaultSchemas []string
	IncludePattern string // glob over "schema.table"
	ExcludePattern string // glob over "schema.table"; always wins over include
	Domains        bool   // expand domains to their base type
	Partitions     bool   // list partition children individually
}

// Matcher decides table membership from the include/exclude patterns.
type Matcher struct {
	defaults map[string]bool
	include  glob.Glob
	exclude  glob.Glob
}

// NewMatcher compiles the patterns. An invalid pattern is a configuration
// error located at the offending option.
func NewMatcher(defaultSchemas []string, include, exclude string) (*Matcher, error) {
	m := &Matcher{defaults: make(map[string]bool, len(defaultSchemas))}
	for _, s := range defaultSchemas {
		m.defaults[s] = true
	}

	var err error
	if include != "" {
		if m.include, err = glob.Compile(include); err != nil {
			return nil, errs.Config(fmt.Sprintf("Invalid glob pattern %q: %v", include, err), "includePattern")
		}
	}
	if exclude != "" {
		if m.exclude, err = glob.Compile(exclude); err != nil {
			return nil, errs.Config(fmt.Sprintf("Invalid glob pattern %q: %v", exclude, err), "excludePattern")
		}
	}
	return m, nil
}

// Match reports whether the table schema.name belongs in the model.
func (m *Matcher) Match(name schema.QualifiedName) bool {
	qualified := name.String()

	included := m.defaults[name.Schema]
	if m.include != nil {
		included = m.include.Match(qualified)
	}
	if !included {
		return false
	}
	return m.exclude == nil || !m.exclude.Match(qualified)
}

// ResolveDefaultSchemas returns the configured schemas, falling back to the
// schema the reader reports as current.
func ResolveDefaultSchemas(configured []string, current string) []string {
	if len(configured) > 0 {
		return configured
	}
	if current == "" {
		return nil
	}
	return []string{current}
}

// Normalize turns a snapshot into a validated model. Table, column and enum
// order come only from the snapshot. Only enums referenced by an included
// column are kept.
func Normalize(snap *catalog.Snapshot, types typemap.Table, policy typemap.Policy, f Filters) (*schema.Model, error) {
	defaults := ResolveDefaultSchemas(f.DefaultSchemas, snap.CurrentSchema)

	matcher, err := NewMatcher(defaults, f.IncludePattern, f.ExcludePattern)
	if err != nil {
		return nil, err
	}

	referenced := make(map[schema.QualifiedName]bool)
	tables := make([]schema.Table, 0, len(snap.Tables))

	for _, t := range snap.Tables {
		if t.PartitionOf != nil && !f.Partitions {
			continue
		}
		if !matcher.Match(t.QualifiedName()) {
			continue
		}

		table := schema.Table{
			Name:    t.QualifiedName(),
			Kind:    t.Kind,
			Columns: make([]schema.Column, 0, len(t.Columns)),
		}
		for _, c := range t.Columns {
			m := mapColumn(snap, types, policy, f.Domains, c.Type)
			markEnums(m.Type, referenced)
			table.Columns = append(table.Columns, schema.Column{
				Name:         c.Name,
				Type:         m.Type,
				Nullable:     c.IsNullable,
				HasDefault:   c.HasDefault || m.Generated,
				IsPrimaryKey: c.IsPrimaryKey,
			})
		}
		tables = append(tables, table)
	}

	enums := make([]schema.EnumType, 0, len(referenced))
	for _, e := range snap.Enums {
		if referenced[e.Name] {
			enums = append(enums, schema.EnumType{Name: e.Name, Labels: e.Labels})
		}
	}

	return schema.New(tables, enums, defaults)
}

func mapColumn(snap *catalog.Snapshot, types typemap.Table, policy typemap.Policy, domains bool, ref catalog.TypeRef) typemap.Mapping {
	if ref.Kind != catalog.TypeDomain || !domains {
		return typemap.Map(types, ref, policy)
	}

	d, ok := snap.Domain(ref.Qualified())
	if !ok {
		return typemap.Map(types, ref, policy)
	}
	base := d.Base
	base.Array = base.Array || ref.Array
	return typemap.Map(types, base, policy)
}

func markEnums(t schema.ColumnType, seen map[schema.QualifiedName]bool) {
	switch v := t.(type) {
	case schema.EnumRef:
		seen[v.Enum] = true
	case schema.ArrayOf:
		markEnums(v.Elem, seen)
	}
}
