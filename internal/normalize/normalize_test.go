package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/typegen/internal/catalog"
	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/schema"
	"github.com/koustreak/typegen/internal/typemap"
)

var types = typemap.Table{
	"int4":   {Kind: schema.KindInteger},
	"serial": {Kind: schema.KindInteger, Generated: true},
	"text":   {Kind: schema.KindText},
}

func table(s, name string, cols ...catalog.ColumnDescriptor) catalog.Table {
	return catalog.Table{
		TableDescriptor: catalog.TableDescriptor{Schema: s, Name: name},
		Columns:         cols,
	}
}

func col(name string, ref catalog.TypeRef) catalog.ColumnDescriptor {
	return catalog.ColumnDescriptor{Name: name, Type: ref}
}

func snapshot() *catalog.Snapshot {
	parent := schema.Q("public", "events")
	child := table("public", "events_2024", col("id", catalog.TypeRef{Name: "int4"}))
	child.PartitionOf = &parent

	return &catalog.Snapshot{
		CurrentSchema: "public",
		Tables: []catalog.Table{
			table("cli", "users",
				catalog.ColumnDescriptor{Name: "status", Type: catalog.TypeRef{Schema: "cli", Name: "status", Kind: catalog.TypeEnum}, IsNullable: true},
				catalog.ColumnDescriptor{Name: "user_id", Type: catalog.TypeRef{Name: "serial"}, IsPrimaryKey: true},
			),
			table("public", "accounts",
				col("email", catalog.TypeRef{Schema: "public", Name: "email", Kind: catalog.TypeDomain}),
				col("kind", catalog.TypeRef{Schema: "public", Name: "kind", Kind: catalog.TypeEnum, Array: true}),
			),
			table("public", "events", col("id", catalog.TypeRef{Name: "int4"})),
			child,
			table("audit", "log", col("id", catalog.TypeRef{Name: "int4"})),
		},
		Enums: []catalog.Enum{
			{Name: schema.Q("public", "unused"), Labels: []string{"x"}},
			{Name: schema.Q("public", "kind"), Labels: []string{"b", "a"}},
			{Name: schema.Q("cli", "status"), Labels: []string{"CONFIRMED", "UNCONFIRMED"}},
		},
		Domains: []catalog.DomainDescriptor{
			{Schema: "public", Name: "email", Base: catalog.TypeRef{Name: "text"}},
		},
	}
}

func tableNames(m *schema.Model) []string {
	var out []string
	for _, t := range m.Tables() {
		out = append(out, t.Name.String())
	}
	return out
}

func TestNormalize_DefaultSchemaFromReader(t *testing.T) {
	m, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{Domains: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"public.accounts", "public.events"}, tableNames(m))
	assert.Equal(t, []string{"public"}, m.DefaultSchemas())

	// only referenced enums survive, in catalog order
	enums := m.Enums()
	require.Len(t, enums, 1)
	assert.Equal(t, "public.kind", enums[0].Name.String())
	assert.Equal(t, []string{"b", "a"}, enums[0].Labels)
}

func TestNormalize_ConfiguredDefaultSchemas(t *testing.T) {
	m, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{DefaultSchemas: []string{"cli"}})
	require.NoError(t, err)

	tables := m.Tables()
	require.Len(t, tables, 1)
	users := tables[0]
	assert.Equal(t, schema.EnumRef{Enum: schema.Q("cli", "status")}, users.Columns[0].Type)
	assert.True(t, users.Columns[0].Nullable)
	assert.True(t, users.Columns[1].HasDefault, "serial implies a default")
	assert.True(t, users.Columns[1].IsPrimaryKey)
}

func TestNormalize_IncludeAndExclude(t *testing.T) {
	tests := []struct {
		name    string
		include string
		exclude string
		want    []string
	}{
		{
			name:    "include crosses schemas",
			include: "*.{users,log}",
			want:    []string{"cli.users", "audit.log"},
		},
		{
			name:    "exclude wins over include",
			include: "cli.*",
			exclude: "cli.users",
			want:    nil,
		},
		{
			name:    "exclude alone filters default schema",
			exclude: "*.events",
			want:    []string{"public.accounts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{
				IncludePattern: tt.include,
				ExcludePattern: tt.exclude,
				Domains:        true,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, tableNames(m))
		})
	}
}

func TestNormalize_InvalidPattern(t *testing.T) {
	_, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{ExcludePattern: "[a"})
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
	assert.Equal(t, []string{"excludePattern"}, errs.PathOf(err))
}

func TestNormalize_Domains(t *testing.T) {
	m, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{Domains: true, IncludePattern: "public.accounts"})
	require.NoError(t, err)
	assert.Equal(t, schema.Primitive{Kind: schema.KindText}, m.Tables()[0].Columns[0].Type)
	assert.Equal(t, schema.ArrayOf{Elem: schema.EnumRef{Enum: schema.Q("public", "kind")}}, m.Tables()[0].Columns[1].Type)

	m, err = Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{Domains: false, IncludePattern: "public.accounts"})
	require.NoError(t, err)
	assert.Equal(t, schema.Unknown{Raw: "public.email"}, m.Tables()[0].Columns[0].Type)
}

func TestNormalize_Partitions(t *testing.T) {
	m, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{IncludePattern: "public.events*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"public.events"}, tableNames(m))

	m, err = Normalize(snapshot(), types, typemap.DefaultPolicy(), Filters{IncludePattern: "public.events*", Partitions: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"public.events", "public.events_2024"}, tableNames(m))
}

func TestNormalize_UnresolvedEnumIsFatal(t *testing.T) {
	snap := snapshot()
	snap.Enums = snap.Enums[:1]

	m, err := Normalize(snap, types, typemap.DefaultPolicy(), Filters{DefaultSchemas: []string{"cli"}})
	assert.Nil(t, m)
	assert.True(t, errs.IsUnresolvedEnum(err))
}

func TestNormalize_Deterministic(t *testing.T) {
	f := Filters{IncludePattern: "*", Domains: true, Partitions: true}
	a, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), f)
	require.NoError(t, err)
	b, err := Normalize(snapshot(), types, typemap.DefaultPolicy(), f)
	require.NoError(t, err)

	assert.Equal(t, a.Tables(), b.Tables())
	assert.Equal(t, a.Enums(), b.Enums())
}
