// Package filestore defines where generated declarations are written to and
// where the previous copy is read from in verify mode.
//
// All providers (local file system, MinIO / S3) implement the Store interface.
// Callers depend only on this package, never on a specific provider package.
//
// Usage:
//
//	loc, err := filestore.ParseLocation("s3://schemas/db.d.ts")
//	cfg := filestore.ConfigFromEnv(loc)
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.Put(ctx, loc.Key, []byte(text))
package filestore

import "context"

// Store is the single interface all file storage providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// Get returns the full content stored at key. A missing key is an
	// errs.ErrKindNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the content stored at key.
	Put(ctx context.Context, key string, data []byte) error

	// Stat returns metadata for the object at key without reading it.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
}
