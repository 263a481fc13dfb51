package naming

import (
	"sort"
	"strconv"
	"unicode"

	"github.com/koustreak/typegen/internal/schema"
)

// Reserved are the identifiers of the shared helper declarations.
var Reserved = []string{
	"ColumnType", "DB", "Generated", "Int8",
	"Json", "JsonArray", "JsonObject", "JsonPrimitive", "JsonValue",
	"Numeric", "Timestamp",
}

// Alias is the declaration emitted for an unmapped catalog type.
type Alias struct {
	Name string
	Raw  string
}

// Names holds every identifier the emitter needs, computed up front so
// emission is a single forward pass.
type Names struct {
	tables   map[schema.QualifiedName]string
	rootKeys map[schema.QualifiedName]string
	columns  map[schema.QualifiedName][]string
	enums    map[schema.QualifiedName]string
	members  map[schema.QualifiedName][]string
	unknown  map[string]string
	aliases  []Alias
}

// Table returns the row type name of t.
func (n *Names) Table(t schema.QualifiedName) string { return n.tables[t] }

// RootKey returns the key of t in the root DB declaration.
func (n *Names) RootKey(t schema.QualifiedName) string { return n.rootKeys[t] }

// Column returns the member name of the i-th column of t.
func (n *Names) Column(t schema.QualifiedName, i int) string { return n.columns[t][i] }

// Enum returns the declared name of enum e.
func (n *Names) Enum(e schema.QualifiedName) string { return n.enums[e] }

// Members returns runtime enum member names, parallel to the enum's labels.
func (n *Names) Members(e schema.QualifiedName) []string { return n.members[e] }

// Unknown returns the alias declared for the raw type name.
func (n *Names) Unknown(raw string) string { return n.unknown[raw] }

// Aliases returns the unknown-type aliases sorted by name.
func (n *Names) Aliases() []Alias { return n.aliases }

// Resolve computes all names for m. Declared type names never collide with
// each other or with Reserved: a colliding name first gets its schema
// prefix, then a numeric suffix.
func Resolve(m *schema.Model, p Policy, style EnumStyle) *Names {
	n := &Names{
		tables:   make(map[schema.QualifiedName]string),
		rootKeys: make(map[schema.QualifiedName]string),
		columns:  make(map[schema.QualifiedName][]string),
		enums:    make(map[schema.QualifiedName]string),
		members:  make(map[schema.QualifiedName][]string),
		unknown:  make(map[string]string),
	}

	taken := make(map[string]bool)
	for _, r := range Reserved {
		taken[r] = true
	}
	claim := func(base, schemaName string, prefixed bool) string {
		name := declarable(base)
		if taken[name] && !prefixed {
			name = declarable(Pascal(schemaName) + base)
		}
		candidate := name
		for i := 2; taken[candidate]; i++ {
			candidate = name + strconv.Itoa(i)
		}
		taken[candidate] = true
		return candidate
	}

	for _, e := range m.Enums() {
		base, prefixed := declared(m, e.Name, e.Name.Name)
		n.enums[e.Name] = claim(base, e.Name.Schema, prefixed)
		n.members[e.Name] = enumMembers(e.Labels, style)
	}

	raws := make(map[string]bool)
	for _, t := range m.Tables() {
		row := t.Name.Name
		if p.Singular {
			row = Singular(row)
		}
		base, prefixed := declared(m, t.Name, row)
		n.tables[t.Name] = claim(base, t.Name.Schema, prefixed)
		n.rootKeys[t.Name] = rootKey(m, t.Name, p)

		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name
			if p.CamelCase {
				cols[i] = Camel(c.Name)
			}
			collectUnknown(c.Type, raws)
		}
		n.columns[t.Name] = cols
	}

	sortedRaws := make([]string, 0, len(raws))
	for r := range raws {
		sortedRaws = append(sortedRaws, r)
	}
	sort.Strings(sortedRaws)
	for _, r := range sortedRaws {
		base := Pascal(r)
		if base == "" || !IsIdentifier(base) {
			base = "Unknown" + base
		}
		name := claim(base, "", true)
		n.unknown[r] = name
		n.aliases = append(n.aliases, Alias{Name: name, Raw: r})
	}
	sort.Slice(n.aliases, func(i, j int) bool { return n.aliases[i].Name < n.aliases[j].Name })

	return n
}

// declarable makes a Pascal-cased name usable as a declaration: an empty
// name, or one starting with a digit, gets a leading underscore.
func declarable(name string) string {
	if IsIdentifier(name) {
		return name
	}
	return "_" + name
}

// declared builds a type name, prefixing objects outside the default schemas.
func declared(m *schema.Model, q schema.QualifiedName, name string) (string, bool) {
	if q.Schema == "" || m.IsDefaultSchema(q.Schema) {
		return Pascal(name), false
	}
	return Pascal(q.Schema) + Pascal(name), true
}

func rootKey(m *schema.Model, q schema.QualifiedName, p Policy) string {
	s, t := q.Schema, q.Name
	if p.CamelCase {
		s, t = Camel(s), Camel(t)
	}
	if q.Schema == "" || m.IsDefaultSchema(q.Schema) {
		return t
	}
	return s + "." + t
}

func enumMembers(labels []string, style EnumStyle) []string {
	out := make([]string, len(labels))
	seen := make(map[string]bool, len(labels))
	for i, l := range labels {
		name := Pascal(l)
		if style == StyleScreamingSnake {
			name = ScreamingSnake(l)
		}
		if name == "" || unicode.IsDigit([]rune(name)[0]) {
			name = "_" + name
		}
		candidate := name
		for k := 2; seen[candidate]; k++ {
			candidate = name + strconv.Itoa(k)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

func collectUnknown(t schema.ColumnType, into map[string]bool) {
	switch v := t.(type) {
	case schema.Unknown:
		into[v.Raw] = true
	case schema.ArrayOf:
		collectUnknown(v.Elem, into)
	}
}
