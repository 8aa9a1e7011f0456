package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob or a committed version does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrConcurrentModification is returned by a Committer when another writer
// committed the same version first.
var ErrConcurrentModification = errors.New("blobstore: concurrent modification detected")

// Store holds immutable named blobs.
type Store interface {
	// Put stores the content of r under name. size is the content length,
	// or -1 if unknown.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Get opens the blob stored under name.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names starting with prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Committer records which blob is the current version of a named series.
type Committer interface {
	// Commit makes path the next version of name and returns that version.
	// Versions start at 1.
	Commit(ctx context.Context, name, path string) (uint64, error)

	// Latest returns the newest committed version of name and its path.
	// It returns ErrNotFound if nothing was committed.
	Latest(ctx context.Context, name string) (uint64, string, error)
}
