// Package memory provides an in-memory implementation of storage.Storage.
// Its contents live for the lifetime of the process only.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
)

// Memory is a map of books keyed by id plus the id counter, both guarded
// by a single mutex.
type Memory struct {
	mu     sync.Mutex
	books  map[int64]types.Book
	nextID int64
}

// New returns an empty store whose first assigned id is 1.
func New() *Memory {
	return &Memory{
		books:  make(map[int64]types.Book),
		nextID: 1,
	}
}

// List returns all books in ascending id order.
func (m *Memory) List(_ context.Context) ([]types.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.Book, 0, len(m.books))
	for _, book := range m.books {
		result = append(result, book.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Get retrieves a book by its id.
func (m *Memory) Get(_ context.Context, id int64) (types.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return types.Book{}, storage.ErrNotFound
	}
	return book.Clone(), nil
}

// Create stores a new book under the next id. The counter is
// post-incremented so deleted ids are never handed out again.
func (m *Memory) Create(_ context.Context, input types.BookInput) (types.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book := input.Book(m.nextID).Clone()
	m.nextID++

	m.books[book.ID] = book
	return book.Clone(), nil
}

// Replace overwrites the book with the given id if it exists.
func (m *Memory) Replace(_ context.Context, id int64, input types.BookInput) (types.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return types.Book{}, storage.ErrNotFound
	}

	book := input.Book(id).Clone()
	m.books[id] = book
	return book.Clone(), nil
}

// Update runs fn over the current book while holding the lock.
func (m *Memory) Update(_ context.Context, id int64, fn storage.UpdateFunc) (types.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.books[id]
	if !ok {
		return types.Book{}, storage.ErrNotFound
	}

	updated, err := fn(current.Clone())
	if err != nil {
		return types.Book{}, err
	}

	updated = updated.Clone()
	updated.ID = id
	m.books[id] = updated
	return updated.Clone(), nil
}

// Delete removes the book with the given id if it exists.
func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return storage.ErrNotFound
	}

	delete(m.books, id)
	return nil
}
