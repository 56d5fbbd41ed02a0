// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The default data source is ":memory:", so the store lives and dies with
// the process just like the in-memory driver. A file path may be
// configured instead.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/pkg/errors"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the books
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite.New: open db")
	}

	// One connection serializes every statement, so each operation is a
	// single critical section. It also keeps a ":memory:" database alive:
	// every new connection to ":memory:" would otherwise see an empty one.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	// AUTOINCREMENT (not just INTEGER PRIMARY KEY) guarantees that ids of
	// deleted rows are never handed out again.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			title  TEXT    NOT NULL,
			author TEXT    NOT NULL,
			year   INTEGER,
			isbn   TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite.New: create table")
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (types.Book, error) {
	var (
		book types.Book
		year sql.NullInt64
		isbn sql.NullString
	)
	if err := row.Scan(&book.ID, &book.Title, &book.Author, &year, &isbn); err != nil {
		return types.Book{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		book.Year = &y
	}
	if isbn.Valid {
		book.ISBN = &isbn.String
	}
	return book, nil
}

func nullYear(year *int) sql.NullInt64 {
	if year == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*year), Valid: true}
}

func nullISBN(isbn *string) sql.NullString {
	if isbn == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *isbn, Valid: true}
}

// List returns all book rows ordered by id.
func (s *SQLite) List(ctx context.Context) ([]types.Book, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, title, author, year, isbn FROM books ORDER BY id",
	)
	if err != nil {
		return nil, errors.Wrap(err, "List: query")
	}
	defer rows.Close()

	books := make([]types.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, errors.Wrap(err, "List: scan row")
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "List: rows iteration")
	}

	return books, nil
}

// Get fetches exactly one book row matched by primary key.
func (s *SQLite) Get(ctx context.Context, id int64) (types.Book, error) {
	return getBook(ctx, s.Db, id)
}

// queryer lets getBook run against the pool or inside a transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getBook(ctx context.Context, q queryer, id int64) (types.Book, error) {
	book, err := scanBook(q.QueryRowContext(ctx,
		"SELECT id, title, author, year, isbn FROM books WHERE id = ? LIMIT 1", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Book{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Get: scan")
	}
	return book, nil
}

// Create inserts a new row; SQLite assigns the id.
func (s *SQLite) Create(ctx context.Context, input types.BookInput) (types.Book, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO books (title, author, year, isbn) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Create: prepare")
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, input.Title, input.Author, nullYear(input.Year), nullISBN(input.ISBN))
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Create: exec")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Create: last insert id")
	}

	return input.Book(id), nil
}

// Replace overwrites every column of an existing row except id.
func (s *SQLite) Replace(ctx context.Context, id int64, input types.BookInput) (types.Book, error) {
	result, err := s.Db.ExecContext(ctx,
		"UPDATE books SET title = ?, author = ?, year = ?, isbn = ? WHERE id = ?",
		input.Title, input.Author, nullYear(input.Year), nullISBN(input.ISBN), id,
	)
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Replace: exec")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Replace: rows affected")
	}
	if affected == 0 {
		return types.Book{}, storage.ErrNotFound
	}

	return input.Book(id), nil
}

// Update reads, transforms and writes back one row inside a transaction.
func (s *SQLite) Update(ctx context.Context, id int64, fn storage.UpdateFunc) (types.Book, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Update: begin")
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	current, err := getBook(ctx, tx, id)
	if err != nil {
		return types.Book{}, err
	}

	updated, err := fn(current)
	if err != nil {
		return types.Book{}, err
	}
	updated.ID = id

	_, err = tx.ExecContext(ctx,
		"UPDATE books SET title = ?, author = ?, year = ?, isbn = ? WHERE id = ?",
		updated.Title, updated.Author, nullYear(updated.Year), nullISBN(updated.ISBN), id,
	)
	if err != nil {
		return types.Book{}, errors.Wrap(err, "Update: exec")
	}

	if err := tx.Commit(); err != nil {
		return types.Book{}, errors.Wrap(err, "Update: commit")
	}

	return updated, nil
}

// Delete removes a book row by primary key.
func (s *SQLite) Delete(ctx context.Context, id int64) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "Delete: exec")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "Delete: rows affected")
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}
