package database

import "context"

// Querier is the read surface catalog readers are written against.
// Both a pooled connection and a snapshot transaction satisfy it.
type Querier interface {
	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow executes a SQL statement that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// DB is the central contract for all database access.
// Layers above this package talk only to this interface;
// they never import pgx or database/sql directly.
type DB interface {
	Querier

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// ReadOnly runs fn inside one read-only transaction so every query
	// issued through q observes the same catalog state. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	ReadOnly(ctx context.Context, fn func(q Querier) error) error
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}
