// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Error responses always look like:
//
//	{ "message": "Book with id 1 not found" }
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/books-api/internal/errcodes"
	"github.com/pkg/errors"
)

// Response is the body returned for every error.
type Response struct {
	Message string `json:"message"`
}

const internalErrorMessage = "internal server error"

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Message wraps a client-facing message into the standard error body.
func Message(msg string) Response {
	return Response{Message: msg}
}

// Error writes err as a JSON error body. An *errcodes.Error anywhere in the
// chain decides the status; anything else is logged and reported as a 500
// without leaking its text to the client.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	var e *errcodes.Error
	if errors.As(err, &e) {
		_ = WriteJSON(w, e.HTTPCode, Message(e.Message))
		return
	}

	log.Error("internal server error", slog.String("error", err.Error()))
	_ = WriteJSON(w, http.StatusInternalServerError, Message(internalErrorMessage))
}
