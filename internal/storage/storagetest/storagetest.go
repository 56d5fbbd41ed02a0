// Package storagetest holds the behaviour every storage.Storage
// implementation must share. Driver packages call Run from their tests.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for a single subtest.
type Factory func(t *testing.T) storage.Storage

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SequentialIDs", func(t *testing.T) { testSequentialIDs(t, newStore(t)) })
	t.Run("IDsNeverReused", func(t *testing.T) { testIDsNeverReused(t, newStore(t)) })
	t.Run("CreateThenGet", func(t *testing.T) { testCreateThenGet(t, newStore(t)) })
	t.Run("ListSortedByID", func(t *testing.T) { testListSortedByID(t, newStore(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("UpdateAbort", func(t *testing.T) { testUpdateAbort(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("ConcurrentCreate", func(t *testing.T) { testConcurrentCreate(t, newStore(t)) })
}

func testSequentialIDs(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	for want := int64(1); want <= 5; want++ {
		book, err := s.Create(ctx, types.BookInput{Title: "T", Author: "A"})
		require.NoError(t, err)
		assert.Equal(t, want, book.ID)
	}
}

func testIDsNeverReused(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.Create(ctx, types.BookInput{Title: "One", Author: "A"})
	require.NoError(t, err)
	second, err := s.Create(ctx, types.BookInput{Title: "Two", Author: "A"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, second.ID))
	require.NoError(t, s.Delete(ctx, first.ID))

	third, err := s.Create(ctx, types.BookInput{Title: "Three", Author: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ID)
}

func testCreateThenGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.Create(ctx, types.BookInput{
		Title:  "Dune",
		Author: "Herbert",
		Year:   intPtr(1965),
		ISBN:   strPtr("0441013597"),
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	minimal, err := s.Create(ctx, types.BookInput{Title: "Emma", Author: "Austen"})
	require.NoError(t, err)

	got, err = s.Get(ctx, minimal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Year)
	assert.Nil(t, got.ISBN)
}

func testListSortedByID(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	books, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)

	for _, title := range []string{"c", "a", "b", "d"} {
		_, err := s.Create(ctx, types.BookInput{Title: title, Author: "A"})
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, 2))

	books, err = s.List(ctx)
	require.NoError(t, err)

	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)
}

func testReplace(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.Create(ctx, types.BookInput{Title: "Dune", Author: "Herbert", Year: intPtr(1965), ISBN: strPtr("x")})
	require.NoError(t, err)

	replaced, err := s.Replace(ctx, created.ID, types.BookInput{Title: "Dune Messiah", Author: "Frank Herbert"})
	require.NoError(t, err)

	want := types.Book{ID: created.ID, Title: "Dune Messiah", Author: "Frank Herbert"}
	assert.Equal(t, want, replaced)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func testUpdate(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.Create(ctx, types.BookInput{Title: "Dune", Author: "Herbert", Year: intPtr(1965)})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, func(b types.Book) (types.Book, error) {
		b.Author = "Frank Herbert"
		b.ID = 999
		return b, nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "update must not change the id")
	assert.Equal(t, "Frank Herbert", updated.Author)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Book{ID: created.ID, Title: "Dune", Author: "Frank Herbert", Year: intPtr(1965)}, got)
}

func testUpdateAbort(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.Create(ctx, types.BookInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	abort := errors.New("abort")
	_, err = s.Update(ctx, created.ID, func(b types.Book) (types.Book, error) {
		b.Title = ""
		return b, abort
	})
	assert.ErrorIs(t, err, abort)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testNotFound(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.Replace(ctx, 42, types.BookInput{Title: "T", Author: "A"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	called := false
	_, err = s.Update(ctx, 42, func(b types.Book) (types.Book, error) {
		called = true
		return b, nil
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, called)

	assert.ErrorIs(t, s.Delete(ctx, 42), storage.ErrNotFound)

	books, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func testConcurrentCreate(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	const workers = 10
	const perWorker = 20

	var wg sync.WaitGroup
	ids := make(chan int64, workers*perWorker)
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				book, err := s.Create(ctx, types.BookInput{Title: "T", Author: "A"})
				if err != nil {
					errs <- err
					continue
				}
				ids <- book.ID
			}
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, workers*perWorker)
	for id := int64(1); id <= workers*perWorker; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}
