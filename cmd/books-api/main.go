// main is the entry point of the Books API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file and/or environment)
//  2. Initialise the logger
//  3. Open the book store (memory or sqlite driver)
//  4. Build the router and middleware chain
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/books-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/books-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/books-api/internal/config"
	"github.com/aanand-mishra/books-api/internal/http/router"
	"github.com/aanand-mishra/books-api/internal/storage"
	"github.com/aanand-mishra/books-api/internal/storage/memory"
	"github.com/aanand-mishra/books-api/internal/storage/sqlite"
	"github.com/pkg/errors"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting books-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	store, closeStore, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ctx is cancelled on SIGINT/SIGTERM; background workers stop with it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(ctx, cfg, store, log),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed after Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			closeStore()
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		closeStore()
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openStorage returns the store selected by cfg.Storage.Driver and a
// function that releases it.
func openStorage(cfg *config.Config) (storage.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging/production: JSON output, DEBUG in staging and INFO in prod.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
