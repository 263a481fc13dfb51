// Package typemap maps raw catalog types to canonical column types.
package typemap

import (
	"strings"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/schema"
)

// NumericParser selects how decimal values are represented.
type NumericParser string

const (
	NumericNumber         NumericParser = "number"
	NumericNumberOrString NumericParser = "number-or-string"
	NumericString         NumericParser = "string"
)

// DateParser selects how calendar dates are represented.
type DateParser string

const (
	DateString    DateParser = "string"
	DateTimestamp DateParser = "timestamp"
)

// Policy is the representation policy consulted for every mapping.
type Policy struct {
	Numeric NumericParser
	Date    DateParser
}

// DefaultPolicy matches the CLI defaults.
func DefaultPolicy() Policy {
	return Policy{Numeric: NumericString, Date: DateTimestamp}
}

// Entry describes one native type name.
type Entry struct {
	Kind      schema.Kind
	Generated bool // serial-like types imply a server default
	Wide      bool // 64-bit integers the driver hands back as strings
}

// Table is a dialect's finite map from lower-cased base type name to Entry.
type Table map[string]Entry

// Mapping is the result of mapping one column type.
type Mapping struct {
	Type      schema.ColumnType
	Generated bool
}

// Map resolves ref against table. It never fails: names missing from the
// table come back as schema.Unknown carrying the raw name. Domain refs are
// expected to be resolved by the caller and map to Unknown here.
func Map(table Table, ref catalog.TypeRef, policy Policy) Mapping {
	elem := ref
	elem.Array = false

	m := mapScalar(table, elem, policy)
	if ref.Array {
		m.Type = schema.ArrayOf{Elem: m.Type}
	}
	return m
}

func mapScalar(table Table, ref catalog.TypeRef, policy Policy) Mapping {
	switch ref.Kind {
	case catalog.TypeEnum:
		return Mapping{Type: schema.EnumRef{Enum: ref.Qualified()}}
	case catalog.TypeDomain:
		return Mapping{Type: schema.Unknown{Raw: ref.Raw()}}
	}

	e, ok := table[BaseName(ref.Name)]
	if !ok {
		return Mapping{Type: schema.Unknown{Raw: ref.Raw()}}
	}
	return Mapping{
		Type:      schema.Primitive{Kind: e.Kind, Repr: repr(e, policy)},
		Generated: e.Generated,
	}
}

// BaseName lower-cases a type name and strips any length, precision or
// modifier suffix: "VARCHAR(255)" -> "varchar", "int(11) unsigned" -> "int".
func BaseName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func repr(e Entry, policy Policy) schema.Repr {
	switch e.Kind {
	case schema.KindInteger:
		if e.Wide {
			return schema.ReprString
		}
	case schema.KindDecimal:
		switch policy.Numeric {
		case NumericNumber:
			return schema.ReprNative
		case NumericNumberOrString:
			return schema.ReprNumberOrString
		default:
			return schema.ReprString
		}
	case schema.KindDate:
		if policy.Date == DateString {
			return schema.ReprString
		}
		return schema.ReprTimestamp
	case schema.KindTimestamp, schema.KindTimestampTZ:
		return schema.ReprTimestamp
	}
	return schema.ReprNative
}
