package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/typegen/internal/errs"
)

func TestDriver_PutGet(t *testing.T) {
	ctx := context.Background()
	d := New(afero.NewMemMapFs())

	require.NoError(t, d.Put(ctx, "src/types/db.d.ts", []byte("export interface DB {}\n")))

	got, err := d.Get(ctx, "src/types/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, "export interface DB {}\n", string(got))

	require.NoError(t, d.Put(ctx, "src/types/db.d.ts", []byte("v2\n")))
	got, err = d.Get(ctx, "src/types/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(got))

	info, err := d.Stat(ctx, "src/types/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)
}

func TestDriver_PutLeavesNoTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	d := New(fsys)

	require.NoError(t, d.Put(context.Background(), "out/db.d.ts", []byte("x")))

	entries, err := afero.ReadDir(fsys, "out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "db.d.ts", entries[0].Name())
}

func TestDriver_GetMissing(t *testing.T) {
	_, err := New(afero.NewMemMapFs()).Get(context.Background(), "nope.d.ts")
	assert.True(t, errs.IsNotFound(err))
}

func TestDriver_StatDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("out", 0o755))

	_, err := New(fsys).Stat(context.Background(), "out")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(afero.NewMemMapFs())
	assert.True(t, errs.IsTimeout(d.Put(ctx, "db.d.ts", nil)))
	_, err := d.Get(ctx, "db.d.ts")
	assert.True(t, errs.IsTimeout(err))
}

func TestDriver_OS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.d.ts")
	d := NewOS()

	require.NoError(t, d.Put(context.Background(), path, []byte("ok\n")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(raw))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}
