package snapshot

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when an archive does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrInvalidName is returned for archive names that are empty or escape the
// store root.
var ErrInvalidName = errors.New("snapshot: invalid archive name")

// Store holds named archives. Put replaces an existing archive atomically.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes an archive. Deleting a missing archive is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the archive names with the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
