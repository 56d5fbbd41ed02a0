// Package router builds the HTTP handler for the service: the route table
// plus the middleware chain wrapped around it.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/errcodes"
	"github.com/aanand-mishra/books-api/internal/http/handlers/book"
	"github.com/aanand-mishra/books-api/internal/http/middleware"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/utils/response"
)

const (
	rateLimitEvictEvery = time.Minute
	rateLimitClientTTL  = 3 * time.Minute
)

// New returns the root handler. Background work started here (rate limiter
// eviction) stops when ctx is done.
//
// Route table:
//
//	GET    /books        → list all books
//	POST   /books        → create a book
//	GET    /books/{id}   → get one book
//	PUT    /books/{id}   → replace a book
//	PATCH  /books/{id}   → partially update a book
//	DELETE /books/{id}   → delete a book
//	GET    /health       → liveness check
//
// Middleware chain (outermost → innermost):
//
//	Recover → RequestLogger → rate limit (when enabled) → mux
func New(ctx context.Context, cfg *config.Config, store storage.Storage, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /books", book.GetList(store, log))
	mux.HandleFunc("POST /books", book.New(store, log))
	mux.HandleFunc("GET /books/{id}", book.GetByID(store, log))
	mux.HandleFunc("PUT /books/{id}", book.Replace(store, log))
	mux.HandleFunc("PATCH /books/{id}", book.Patch(store, log))
	mux.HandleFunc("DELETE /books/{id}", book.Delete(store, log))

	mux.HandleFunc("GET /health", health)

	// Method-less patterns only match when no method pattern above does.
	mux.HandleFunc("/books", methodNotAllowed)
	mux.HandleFunc("/books/{id}", methodNotAllowed)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, log, errcodes.NotFound())
	})

	var handler http.Handler = mux

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, log)
		go limiter.RunEviction(ctx, rateLimitEvictEvery, rateLimitClientTTL)
		handler = limiter.Middleware(handler)
	}

	handler = middleware.RequestLogger(log)(handler)
	handler = middleware.Recover(log)(handler)

	return handler
}

func health(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusMethodNotAllowed,
		response.Message("the "+r.Method+" method is not supported for this resource"))
}
