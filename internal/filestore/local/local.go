// Package local provides a file system implementation of filestore.Store.
// Keys are file paths, relative to the working directory or absolute.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/koustreak/typegen/internal/errs"
	"github.com/koustreak/typegen/internal/filestore"
)

// Driver writes output documents through an afero file system.
type Driver struct {
	fs afero.Fs
}

// New returns a Driver over fsys. Tests pass afero.NewMemMapFs().
func New(fsys afero.Fs) *Driver {
	return &Driver{fs: fsys}
}

// NewOS returns a Driver over the real file system.
func NewOS() *Driver {
	return New(afero.NewOsFs())
}

func (d *Driver) Ping(ctx context.Context) error { return ctx.Err() }

func (d *Driver) Close() error { return nil }

// Get reads the file at key.
func (d *Driver) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "read cancelled", err)
	}
	data, err := afero.ReadFile(d.fs, key)
	if err != nil {
		return nil, mapError(err, "failed to read "+key)
	}
	return data, nil
}

// Put writes data to key, creating parent directories. The file is written
// to a sibling temp file first and renamed so readers never see a partial
// document.
func (d *Driver) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "write cancelled", err)
	}

	dir := filepath.Dir(key)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return mapError(err, "failed to create "+dir)
	}

	tmp, err := afero.TempFile(d.fs, dir, "."+filepath.Base(key)+".*")
	if err != nil {
		return mapError(err, "failed to create temp file in "+dir)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		d.fs.Remove(name)
		return mapError(err, "failed to write "+key)
	}
	if err := tmp.Close(); err != nil {
		d.fs.Remove(name)
		return mapError(err, "failed to write "+key)
	}
	if err := d.fs.Chmod(name, 0o644); err != nil {
		d.fs.Remove(name)
		return mapError(err, "failed to write "+key)
	}
	if err := d.fs.Rename(name, key); err != nil {
		d.fs.Remove(name)
		return mapError(err, "failed to write "+key)
	}
	return nil
}

// Stat returns metadata for the file at key.
func (d *Driver) Stat(ctx context.Context, key string) (*filestore.ObjectInfo, error) {
	fi, err := d.fs.Stat(key)
	if err != nil {
		return nil, mapError(err, "failed to stat "+key)
	}
	if fi.IsDir() {
		return nil, errs.New(errs.ErrKindInvalidInput, key+" is a directory")
	}
	return &filestore.ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
	}, nil
}

func mapError(err error, msg string) *errs.Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	case errors.Is(err, fs.ErrPermission):
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

var _ filestore.Store = (*Driver)(nil)
