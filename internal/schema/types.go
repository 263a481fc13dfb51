package schema

import "strings"

// Kind is the semantic category of a primitive column type.
type Kind int

const (
	KindBoolean Kind = iota
	KindInteger
	KindFloat
	KindDecimal
	KindText
	KindDate
	KindTimestamp
	KindTimestampTZ
	KindJSON
	KindBinary
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindTimestampTZ:
		return "timestamptz"
	case KindJSON:
		return "json"
	case KindBinary:
		return "binary"
	case KindUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Repr records how a primitive is represented in generated code. It is
// decided once by the type mapper from the numeric/date parser policy.
type Repr int

const (
	ReprNative         Repr = iota // the kind's natural representation
	ReprString                     // delivered as a string (numeric, int8, date)
	ReprNumberOrString             // number | string
	ReprTimestamp                  // opaque Timestamp wrapper
)

// ColumnType is the canonical, dialect-independent type of a column.
// It is one of Primitive, EnumRef, ArrayOf, Unknown or Literal.
type ColumnType interface {
	columnType()
	String() string
}

// Primitive is a scalar type with a fixed representation.
type Primitive struct {
	Kind Kind
	Repr Repr
}

// EnumRef points at an EnumType of the same Model.
type EnumRef struct {
	Enum QualifiedName
}

// ArrayOf is a one-dimensional array of Elem.
type ArrayOf struct {
	Elem ColumnType
}

// Unknown preserves a catalog type with no mapping, verbatim.
type Unknown struct {
	Raw string
}

// Literal is a user supplied type expression that replaces inference entirely.
type Literal struct {
	Expr string
}

func (Primitive) columnType() {}
func (EnumRef) columnType()   {}
func (ArrayOf) columnType()   {}
func (Unknown) columnType()   {}
func (Literal) columnType()   {}

func (p Primitive) String() string { return p.Kind.String() }
func (e EnumRef) String() string   { return "enum " + e.Enum.String() }
func (a ArrayOf) String() string   { return a.Elem.String() + "[]" }
func (u Unknown) String() string   { return "unknown " + u.Raw }
func (l Literal) String() string   { return "literal " + l.Expr }

// QualifiedName identifies a catalog object by schema and name.
type QualifiedName struct {
	Schema string
	Name   string
}

// Q builds a QualifiedName.
func Q(schema, name string) QualifiedName {
	return QualifiedName{Schema: schema, Name: name}
}

// ParseQualifiedName splits "schema.name" on its first dot. A name without
// a dot yields an empty schema.
func ParseQualifiedName(s string) QualifiedName {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return QualifiedName{Schema: s[:i], Name: s[i+1:]}
	}
	return QualifiedName{Name: s}
}

func (q QualifiedName) String() string {
	if q.Schema == "" {
		return q.Name
	}
	return q.Schema + "." + q.Name
}
