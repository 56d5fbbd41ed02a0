// Package storage defines the Storage interface — the contract that every
// book store backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the in-memory store and the
// SQLite store are interchangeable and a fake can be passed in tests.
package storage

import (
	"context"

	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no book exists for the requested id.
var ErrNotFound = errors.New("book not found")

// UpdateFunc receives a copy of the stored book and returns the value to
// store in its place. Returning an error aborts the update and leaves the
// store unchanged; the error is passed back to the caller untouched.
type UpdateFunc func(current types.Book) (types.Book, error)

// Storage is the book store contract. Every method is safe for concurrent
// use and runs as a single critical section.
type Storage interface {
	// List returns every book ordered by ascending id. The slice is empty
	// (not nil) when the store is empty.
	List(ctx context.Context) ([]types.Book, error)

	// Get returns the book with the given id, or ErrNotFound.
	Get(ctx context.Context, id int64) (types.Book, error)

	// Create assigns the next id to a new book built from input and stores
	// it. Ids start at 1, grow by one and are never reused.
	Create(ctx context.Context, input types.BookInput) (types.Book, error)

	// Replace overwrites every field of the book with the given id except
	// the id itself. Returns ErrNotFound if it does not exist.
	Replace(ctx context.Context, id int64, input types.BookInput) (types.Book, error)

	// Update applies fn to the book with the given id as one atomic
	// read-modify-write. Returns ErrNotFound if it does not exist.
	Update(ctx context.Context, id int64, fn UpdateFunc) (types.Book, error)

	// Delete removes the book with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
