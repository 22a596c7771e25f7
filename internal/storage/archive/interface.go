// internal/storage/archive/interface.go
package archive

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when nothing is stored at the path.
var ErrNotFound = errors.New("archive: object not found")

// Storage is a flat blob store used for cache entries and exported snapshots.
type Storage interface {
	// Write stores data at the given path, replacing any previous content.
	// A concurrent reader sees either the old or the new content, never a mix.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
