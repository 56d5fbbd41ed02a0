// Package book contains all HTTP handlers for the Book resource.
//
// Every handler is built by a factory that receives its dependencies
// (the store and a logger) and returns the http.HandlerFunc the router
// needs. The factory runs once at startup; the returned closure runs on
// every request.
//
//	router.HandleFunc("POST /books", book.New(store, log))
package book

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/books-api/internal/errcodes"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/types"
	"github.com/aanand-mishra/books-api/internal/utils/response"
	"github.com/pkg/errors"
)

// readID parses the {id} path segment.
func readID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errcodes.InvalidID()
	}
	return id, nil
}

// storeError turns storage.ErrNotFound into the client-facing 404 and
// passes every other error through.
func storeError(err error, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return errcodes.BookNotFound(id)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /books
// Returns a JSON array of all books ordered by id; [] when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := store.List(r.Context())
		if err != nil {
			response.Error(w, log, err)
			return
		}

		log.Debug("listed books", slog.Int("count", len(books)))
		response.WriteJSON(w, http.StatusOK, books)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /books/{id}
//
// Error responses:
//
//	400 Bad Request — id is not a valid integer
//	404 Not Found   — { "message": "Book with id 7 not found" }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := readID(r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		book, err := store.Get(r.Context(), id)
		if err != nil {
			response.Error(w, log, storeError(err, id))
			return
		}

		response.WriteJSON(w, http.StatusOK, book)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /books
// Creates a new book from the JSON request body.
//
// Request body (JSON):
//
//	{ "title": "Dune", "author": "Herbert", "year": 1965 }
//
// Success response (201 Created, Location: /books/1):
//
//	{ "id": 1, "title": "Dune", "author": "Herbert", "year": 1965 }
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := readInput(w, r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		if err := validate.Struct(input); err != nil {
			response.Error(w, log, errcodes.ValidationError(errcodes.RequiredFieldsMessage))
			return
		}

		book, err := store.Create(r.Context(), input)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		log.Info("book created", slog.Int64("id", book.ID))

		w.Header().Set("Location", fmt.Sprintf("/books/%d", book.ID))
		response.WriteJSON(w, http.StatusCreated, book)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Replace handles PUT /books/{id}
// Overwrites every field except id. Fields missing from the body are
// cleared, not kept. The body is validated before the store is touched,
// so an invalid body is a 400 even when the id does not exist.
// ─────────────────────────────────────────────────────────────────────────────
func Replace(store storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := readID(r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		input, err := readInput(w, r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		if err := validate.Struct(input); err != nil {
			response.Error(w, log, errcodes.ValidationError(errcodes.RequiredFieldsMessage))
			return
		}

		book, err := store.Replace(r.Context(), id, input)
		if err != nil {
			response.Error(w, log, storeError(err, id))
			return
		}

		log.Info("book replaced", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, book)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /books/{id}
// Changes only the fields present in the body with the expected JSON type;
// everything else keeps its stored value. The merged book must still have
// a non-blank title and author, otherwise nothing is written.
// ─────────────────────────────────────────────────────────────────────────────
func Patch(store storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := readID(r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		patch, err := readPatch(w, r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		book, err := store.Update(r.Context(), id, func(current types.Book) (types.Book, error) {
			merged := patch.ApplyTo(current)
			if err := validate.Struct(merged); err != nil {
				return types.Book{}, errcodes.ValidationError(errcodes.NonEmptyFieldsMessage)
			}
			return merged, nil
		})
		if err != nil {
			response.Error(w, log, storeError(err, id))
			return
		}

		log.Info("book patched", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, book)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /books/{id}
// Responds 204 No Content with an empty body.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := readID(r)
		if err != nil {
			response.Error(w, log, err)
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			response.Error(w, log, storeError(err, id))
			return
		}

		log.Info("book deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}
