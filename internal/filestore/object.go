package filestore

import "time"

// ObjectInfo describes a single stored output document.
type ObjectInfo struct {
	// Key is the path of the document within its store (e.g. "types/db.d.ts").
	Key string

	// Size is the byte size of the document. -1 if unknown.
	Size int64

	// ETag is the object's entity tag / hash, as returned by the backend.
	// Empty for the local file system.
	ETag string

	// LastModified is when the document was last written.
	LastModified time.Time
}

// ContentType is sent with every object written to object storage.
const ContentType = "application/typescript; charset=utf-8"
