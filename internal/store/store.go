// Package store defines the persistence contract for todo records and the
// error type that wraps driver failures.
package store

import (
	"context"
	"fmt"

	"todoapp/internal/domain"
)

// Store owns the durable todo records. Implementations live in the
// postgres, sqlite and memory subpackages; the server picks one at startup
// and hands it to the HTTP layer.
type Store interface {
	// List returns every record in insertion (id) order. The order is
	// stable between calls absent mutation.
	List(ctx context.Context) ([]domain.Todo, error)

	// Create allocates a new id, persists the record with completed=false
	// and returns it. Blank text fails with domain.ErrEmptyText.
	Create(ctx context.Context, text, detail string) (domain.Todo, error)

	// Get returns a single record or domain.ErrNotFound.
	Get(ctx context.Context, id int64) (domain.Todo, error)

	// Update merges changes into the stored record (domain.Todo.Apply) and
	// returns the full post-merge record. Unknown ids fail with
	// domain.ErrNotFound; an empty Changes succeeds and returns the record
	// unmodified.
	Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error)

	// Delete removes the record permanently and returns its id, or
	// domain.ErrNotFound.
	Delete(ctx context.Context, id int64) (int64, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying pool or handle.
	Close()
}

// StorageError wraps a driver-level failure with the operation that hit it.
// domain.ErrNotFound and domain.ErrEmptyText are never wrapped.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapErr returns err as a *StorageError unless it is nil or a domain
// sentinel that callers match on directly.
func WrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == domain.ErrNotFound || err == domain.ErrEmptyText {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
