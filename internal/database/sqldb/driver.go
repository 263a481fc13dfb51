// Package sqldb provides a database/sql implementation of database.DB shared
// by every engine whose Go driver registers with database/sql (MySQL, SQLite,
// SQL Server). Engine packages supply the driver name, snapshot transaction
// options and the mapping from native errors to *errs.Error.
package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koustreak/typegen/internal/database"
	"github.com/koustreak/typegen/internal/errs"
)

// MapFunc translates a non-nil native driver error into *errs.Error.
type MapFunc func(err error, msg string) *errs.Error

// Options configures the engine-specific behaviour of a Driver.
type Options struct {
	// DriverName is the name the Go driver registered with database/sql.
	DriverName string

	// TxOptions are used for the snapshot transaction. nil means the
	// driver's default transaction.
	TxOptions *sql.TxOptions

	// MapError classifies native errors. Defaults to MapError.
	MapError MapFunc
}

// Driver is a database/sql implementation of database.DB.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db   *sql.DB
	opts Options
}

// Open opens a connection pool using cfg and opts, then pings it.
func Open(ctx context.Context, cfg *database.Config, opts Options) (*Driver, error) {
	db, err := sql.Open(opts.DriverName, cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := New(db, opts)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, opts Options) *Driver {
	if opts.MapError == nil {
		opts.MapError = MapError
	}
	return &Driver{db: db, opts: opts}
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return d.opts.MapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.opts.MapError(err, "query failed")
	}
	return &sqlRows{rows: rows, mapError: d.opts.MapError}, nil
}

func (d *Driver) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...), mapError: d.opts.MapError}
}

// ReadOnly runs fn inside a single transaction opened with Options.TxOptions.
func (d *Driver) ReadOnly(ctx context.Context, fn func(q database.Querier) error) error {
	tx, err := d.db.BeginTx(ctx, d.opts.TxOptions)
	if err != nil {
		return d.opts.MapError(err, "failed to begin snapshot transaction")
	}

	if err := fn(&txQuerier{tx: tx, mapError: d.opts.MapError}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return d.opts.MapError(err, "failed to finish snapshot transaction")
	}
	return nil
}

// --- sql.DB type wrappers ---

type txQuerier struct {
	tx       *sql.Tx
	mapError MapFunc
}

func (t *txQuerier) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.mapError(err, "query failed")
	}
	return &sqlRows{rows: rows, mapError: t.mapError}, nil
}

func (t *txQuerier) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return &sqlRow{row: t.tx.QueryRowContext(ctx, query, args...), mapError: t.mapError}
}

type sqlRows struct {
	rows     *sql.Rows
	mapError MapFunc
}

func (r *sqlRows) Next() bool { return r.rows.Next() }
func (r *sqlRows) Close()     { _ = r.rows.Close() }

func (r *sqlRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.mapError(err, "failed to scan row")
	}
	return nil
}

func (r *sqlRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return r.mapError(err, "error during row iteration")
	}
	return nil
}

type sqlRow struct {
	row      *sql.Row
	mapError MapFunc
}

func (r *sqlRow) Scan(dest ...any) error {
	if err := r.row.Scan(dest...); err != nil {
		return r.mapError(err, "failed to scan row")
	}
	return nil
}

// --- error mapping ---

// MapError is the engine-agnostic classification: context errors become
// timeouts, sql.ErrNoRows becomes not found, anything else a failed query.
// Engine packages call it first and refine the remainder.
func MapError(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
