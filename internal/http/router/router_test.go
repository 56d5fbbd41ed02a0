package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/http/middleware"
	"github.com/aanand-mishra/books-api/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(ctx, cfg, memory.New(), log)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateGetDeleteScenario(t *testing.T) {
	h := newTestHandler(t, &config.Config{})

	rr := serve(h, http.MethodPost, "/books", `{"title":"Dune","author":"Herbert"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/books/1", rr.Header().Get("Location"))
	assert.JSONEq(t, `{"id":1,"title":"Dune","author":"Herbert"}`, rr.Body.String())

	rr = serve(h, http.MethodGet, "/books/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"title":"Dune","author":"Herbert"}`, rr.Body.String())

	rr = serve(h, http.MethodDelete, "/books/1", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(h, http.MethodGet, "/books/1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Book with id 1 not found"}`, rr.Body.String())

	rr = serve(h, http.MethodPost, "/books", `{"title":"Emma","author":"Austen"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/books/2", rr.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	rr := serve(newTestHandler(t, &config.Config{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestUnknownRoutes(t *testing.T) {
	h := newTestHandler(t, &config.Config{})

	rr := serve(h, http.MethodGet, "/authors", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"the requested resource could not be found"}`, rr.Body.String())

	rr = serve(h, http.MethodDelete, "/books", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"message":"the DELETE method is not supported for this resource"}`, rr.Body.String())

	rr = serve(h, http.MethodPost, "/books/1", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHandler(t, &config.Config{})

	rr := serve(h, http.MethodGet, "/books", "")
	assert.Len(t, rr.Header().Get(middleware.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set(middleware.RequestIDHeader, "0b6e1c1e-4f7a-4a39-9a4e-3b8c2f6f0f11")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "0b6e1c1e-4f7a-4a39-9a4e-3b8c2f6f0f11", rr.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimitEnabled(t *testing.T) {
	h := newTestHandler(t, &config.Config{
		RateLimit: config.RateLimit{Enabled: true, RPS: 0.001, Burst: 2},
	})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/books", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/books", "").Code)

	rr := serve(h, http.MethodGet, "/books", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"message":"rate limit exceeded"}`, rr.Body.String())
}
