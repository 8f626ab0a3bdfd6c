/*
main.go - Application entry point

PURPOSE:
  Starts the commission engine HTTP server. Handles configuration,
  dependency injection, the reminder scheduler and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env, YAML, environment)
  2. Apply command-line overrides
  3. Build the app (sqlite store, settings, services)
  4. Configure HTTP router
  5. Start the reminder scheduler and the server

COMMAND-LINE FLAGS:
  -config  Config file (default: $CONFIG_PATH or ./config/local.yaml)
  -db      SQLite database path, overrides storage_path
           Use ":memory:" for in-memory database
  -addr    Listen address, overrides http_server.address

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server
  ./server -db=":memory:" -addr=":3000"
  CONFIG_PATH=./config/prod.yaml ./server

SEE ALSO:
  - app/app.go: Service wiring
  - api/server.go: Router configuration
  - config/config.go: Config keys
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/construcosta/commission-engine/api"
	"github.com/construcosta/commission-engine/app"
	"github.com/construcosta/commission-engine/config"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "SQLite database path")
	addr := flag.String("addr", "", "HTTP listen address")
	flag.Parse()

	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}
	cfg := config.MustLoad()
	if *dbPath != "" {
		cfg.StoragePath = *dbPath
	}
	if *addr != "" {
		cfg.Address = *addr
	}

	logger := app.SetupLogger(cfg.Env)
	logger.Info("starting commission engine", slog.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	a, err := app.New(context.Background(), cfg, logger, nil)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	router, err := api.NewRouter(a.Handler(), api.RouterOptions{RateLimit: cfg.RateLimit})
	if err != nil {
		log.Fatalf("Failed to configure router: %v", err)
	}

	scheduler := a.Scheduler()
	scheduler.Start()

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		logger.Info("server started", slog.String("address", cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
