// Package storage provides blob storage for uploaded source documents and
// exported signed PDFs. It defines a System interface and a filesystem
// implementation suitable for single-node deployments.
package storage

import (
	"context"
	"errors"
)

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrInvalidKey indicates the key is malformed. This includes empty
	// keys and path traversal attempts.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// System defines the blob storage operations.
type System interface {
	// Store saves data at the specified key, overwriting existing
	// contents. Parent directories are created as needed.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data stored at the specified key. Returns
	// ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the data at the specified key. Deleting a missing
	// key is a no-op.
	Delete(ctx context.Context, key string) error

	// Path resolves a key to an absolute filesystem path for collaborators
	// that read files directly.
	Path(ctx context.Context, key string) (string, error)
}
