package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/errs"
)

func TestInfer(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/db":   "postgres",
		"postgresql://localhost/db":          "postgres",
		"mysql://root@localhost/app":         "mysql",
		"mssql://sa@localhost?database=app":  "mssql",
		"sqlserver://sa@localhost":           "mssql",
		"libsql://db.example.com":            "libsql",
		"./app.db":                           "sqlite",
		"/var/lib/app.sqlite":                "sqlite",
		"C:\\data\\app.db":                   "sqlite",
		"sqlite:///tmp/app.db":               "sqlite",
		"POSTGRES://LOCALHOST/db":            "postgres",
		"":                                   "sqlite",
		"file:app.db?mode=ro":                "sqlite",
		"http://example.com":                 "sqlite",
		"postgres-not-really.db":             "sqlite",
		"mysql.db":                           "sqlite",
		"postgres://user@host/db?sslmode=no": "postgres",
	}
	for url, want := range tests {
		assert.Equal(t, want, Infer(url), url)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names {
		d, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, d.Types())
	}

	d, err := Lookup("kysely-bun-sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, database.DriverSQLite, Driver("kysely-bun-sqlite"))

	_, err = Lookup("oracle")
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
	assert.Equal(t, []string{"dialectName"}, errs.PathOf(err))
}

func TestResolve(t *testing.T) {
	name, d, err := Resolve("", "mysql://root@localhost/app")
	require.NoError(t, err)
	assert.Equal(t, "mysql", name)
	assert.Equal(t, "mysql", d.Name())

	name, _, err = Resolve("libsql", "./local.db")
	require.NoError(t, err)
	assert.Equal(t, "libsql", name)
}
