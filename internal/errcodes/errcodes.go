// Package errcodes defines the errors that are surfaced to API clients
// with a specific HTTP status. Any other error reaching the response layer
// is treated as an internal server error.
package errcodes

import (
	"fmt"
	"net/http"
)

// Error is an error with the HTTP status it should be reported with.
type Error struct {
	HTTPCode int
	Message  string
}

func (err *Error) Error() string {
	return err.Message
}

// Messages for book validation failures.
const (
	RequiredFieldsMessage = "Both 'title' and 'author' are required"
	NonEmptyFieldsMessage = "Both 'title' and 'author' must be non-empty"
)

// ValidationError returns a 400 error carrying msg.
func ValidationError(msg string) error {
	return &Error{http.StatusBadRequest, msg}
}

// BookNotFound returns a 404 error for the given book id.
func BookNotFound(id int64) error {
	return &Error{
		http.StatusNotFound,
		fmt.Sprintf("Book with id %d not found", id),
	}
}

// NotFound returns a 404 error for a route that does not exist.
func NotFound() error {
	return &Error{http.StatusNotFound, "the requested resource could not be found"}
}

// InvalidID returns a 400 error for an {id} path segment that is not an integer.
func InvalidID() error {
	return &Error{http.StatusBadRequest, "invalid id: must be an integer"}
}

// MalformedPayload returns a 400 error for a body that cannot be decoded.
func MalformedPayload(msg string) error {
	return &Error{http.StatusBadRequest, msg}
}

// RateLimitExceeded returns a 429 error for a client over its request budget.
func RateLimitExceeded() error {
	return &Error{http.StatusTooManyRequests, "rate limit exceeded"}
}
