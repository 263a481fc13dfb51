package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/schema"
)

var testTable = Table{
	"int4":      {Kind: schema.KindInteger},
	"int8":      {Kind: schema.KindInteger, Wide: true},
	"serial":    {Kind: schema.KindInteger, Generated: true},
	"numeric":   {Kind: schema.KindDecimal},
	"date":      {Kind: schema.KindDate},
	"timestamp": {Kind: schema.KindTimestamp},
	"varchar":   {Kind: schema.KindText},
}

func TestMap(t *testing.T) {
	tests := []struct {
		name   string
		ref    catalog.TypeRef
		policy Policy
		want   schema.ColumnType
		gen    bool
	}{
		{
			name: "plain integer",
			ref:  catalog.TypeRef{Name: "int4"},
			want: schema.Primitive{Kind: schema.KindInteger},
		},
		{
			name: "serial is generated",
			ref:  catalog.TypeRef{Name: "serial"},
			want: schema.Primitive{Kind: schema.KindInteger},
			gen:  true,
		},
		{
			name: "wide integer is a string",
			ref:  catalog.TypeRef{Name: "int8"},
			want: schema.Primitive{Kind: schema.KindInteger, Repr: schema.ReprString},
		},
		{
			name: "length suffix and case are ignored",
			ref:  catalog.TypeRef{Name: "VARCHAR(255)"},
			want: schema.Primitive{Kind: schema.KindText},
		},
		{
			name:   "numeric as number",
			ref:    catalog.TypeRef{Name: "numeric"},
			policy: Policy{Numeric: NumericNumber},
			want:   schema.Primitive{Kind: schema.KindDecimal, Repr: schema.ReprNative},
		},
		{
			name:   "numeric as number or string",
			ref:    catalog.TypeRef{Name: "numeric(10,2)"},
			policy: Policy{Numeric: NumericNumberOrString},
			want:   schema.Primitive{Kind: schema.KindDecimal, Repr: schema.ReprNumberOrString},
		},
		{
			name:   "numeric as string",
			ref:    catalog.TypeRef{Name: "numeric"},
			policy: Policy{Numeric: NumericString},
			want:   schema.Primitive{Kind: schema.KindDecimal, Repr: schema.ReprString},
		},
		{
			name:   "date as string",
			ref:    catalog.TypeRef{Name: "date"},
			policy: Policy{Date: DateString},
			want:   schema.Primitive{Kind: schema.KindDate, Repr: schema.ReprString},
		},
		{
			name:   "date as timestamp",
			ref:    catalog.TypeRef{Name: "date"},
			policy: Policy{Date: DateTimestamp},
			want:   schema.Primitive{Kind: schema.KindDate, Repr: schema.ReprTimestamp},
		},
		{
			name:   "timestamps ignore the date parser",
			ref:    catalog.TypeRef{Name: "timestamp"},
			policy: Policy{Date: DateString},
			want:   schema.Primitive{Kind: schema.KindTimestamp, Repr: schema.ReprTimestamp},
		},
		{
			name: "enum reference",
			ref:  catalog.TypeRef{Schema: "cli", Name: "status", Kind: catalog.TypeEnum},
			want: schema.EnumRef{Enum: schema.Q("cli", "status")},
		},
		{
			name: "array of enum",
			ref:  catalog.TypeRef{Schema: "cli", Name: "status", Kind: catalog.TypeEnum, Array: true},
			want: schema.ArrayOf{Elem: schema.EnumRef{Enum: schema.Q("cli", "status")}},
		},
		{
			name: "unknown keeps the raw name",
			ref:  catalog.TypeRef{Name: "tsvector"},
			want: schema.Unknown{Raw: "tsvector"},
		},
		{
			name: "unknown array keeps the element name",
			ref:  catalog.TypeRef{Name: "geometry", Array: true},
			want: schema.ArrayOf{Elem: schema.Unknown{Raw: "geometry"}},
		},
		{
			name: "unresolved domain is opaque",
			ref:  catalog.TypeRef{Schema: "cli", Name: "email", Kind: catalog.TypeDomain},
			want: schema.Unknown{Raw: "cli.email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(testTable, tt.ref, tt.policy)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.gen, got.Generated)
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "int", BaseName("int(11) unsigned"))
	assert.Equal(t, "varchar", BaseName(" VARCHAR(255) "))
	assert.Equal(t, "double precision", BaseName("double precision"))
}

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, Policy{Numeric: NumericString, Date: DateTimestamp}, DefaultPolicy())
}
