/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the deposit projection engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize run store (SQLite, or process memory with -db="")
  3. Create API handler with dependencies (engine logger per -log-level)
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: runs.db)
              Use ":memory:" for in-memory database
              Use "" to keep runs in a plain map (no SQLite)
  -log-level  Engine event level: debug, info, warn, error, off (default: off)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/runs.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

  # Log every accrual, levy and flat tax of every simulation
  ./server -log-level=debug

ENVIRONMENT:
  No environment variables currently. All config via flags.
  Future: DATABASE_URL, PORT

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
  - generic/store/memory.go: Map-backed store for -db=""
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/deposit-engine/api"
	"github.com/warp/deposit-engine/generic"
	"github.com/warp/deposit-engine/generic/store"
	"github.com/warp/deposit-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "runs.db", "SQLite database path")
	logLevel := flag.String("log-level", "off", "Engine event level (debug, info, warn, error, off)")
	flag.Parse()

	engineLogger, err := newEngineLogger(*logLevel)
	if err != nil {
		log.Fatalf("Invalid -log-level: %v", err)
	}

	// Initialize store
	runStore, closeStore, err := openStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer closeStore()

	// Initialize handler
	handler := api.NewHandler(runStore)
	handler.Logger = engineLogger

	if runs, err := runStore.ListRuns(context.Background()); err != nil {
		log.Printf("Warning: Failed to list runs: %v", err)
	} else {
		log.Printf("Loaded run store with %d exported runs", len(runs))
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// openStore opens the SQLite store at path, or a memory store when path is
// empty.
func openStore(path string) (generic.Store, func() error, error) {
	if path == "" {
		log.Printf("Runs are kept in memory and lost on shutdown")
		return store.NewMemory(), func() error { return nil }, nil
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// newEngineLogger builds the slog logger handed to every simulated wallet.
func newEngineLogger(level string) (*slog.Logger, error) {
	if level == "off" {
		return slog.New(slog.DiscardHandler), nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
