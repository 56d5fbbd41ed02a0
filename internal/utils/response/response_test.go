package response

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aanand-mishra/books-api/internal/errcodes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "coded error",
			err:    errcodes.BookNotFound(4),
			status: http.StatusNotFound,
			body:   `{"message":"Book with id 4 not found"}`,
		},
		{
			name:   "wrapped coded error",
			err:    errors.Wrap(errcodes.ValidationError(errcodes.RequiredFieldsMessage), "create"),
			status: http.StatusBadRequest,
			body:   `{"message":"Both 'title' and 'author' are required"}`,
		},
		{
			name:   "plain error",
			err:    errors.New("connection reset"),
			status: http.StatusInternalServerError,
			body:   `{"message":"internal server error"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Error(rr, log, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.body, rr.Body.String())
		})
	}
}

func TestNoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	NoContent(rr)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())
}
