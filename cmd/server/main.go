/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the procurement decision engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse environment variables, then command-line flags (flags win)
  2. Initialize SQLite rule store
  3. Open JSONL audit ledger
  4. Load vendor catalog
  5. Configure HTTP router
  6. Start server with graceful shutdown

CONFIGURATION:
  Env                Flag       Default
  PORT               -port      8080
  DATABASE_PATH      -db        procurement.db   (":memory:" supported)
  AUDIT_LOG_PATH     -audit     audit_log.jsonl
  VENDOR_CATALOG     -catalog   vendors.json

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close ledger and database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Rule store implementation
  - store/jsonl/jsonl.go: Audit ledger implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/warp/procurement-engine/api"
	"github.com/warp/procurement-engine/catalog"
	"github.com/warp/procurement-engine/store/jsonl"
	"github.com/warp/procurement-engine/store/sqlite"
)

type config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DBPath      string `env:"DATABASE_PATH" envDefault:"procurement.db"`
	AuditPath   string `env:"AUDIT_LOG_PATH" envDefault:"audit_log.jsonl"`
	CatalogPath string `env:"VENDOR_CATALOG" envDefault:"vendors.json"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}

	// Flags override environment.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (\":memory:\" supported)")
	auditPath := flag.String("audit", cfg.AuditPath, "Audit ledger JSONL path")
	catalogPath := flag.String("catalog", cfg.CatalogPath, "Vendor catalog JSON path")
	flag.Parse()

	// Initialize rule store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Open audit ledger
	ledger, err := jsonl.Open(*auditPath)
	if err != nil {
		log.Fatalf("Failed to open audit ledger: %v", err)
	}
	defer ledger.Close()

	// Load vendor catalog
	cat, err := catalog.Open(*catalogPath, ledger)
	if err != nil {
		log.Fatalf("Failed to load vendor catalog: %v", err)
	}

	// Create router
	handler := api.NewHandler(store, ledger, cat)
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
		log.Printf("Procurement engine listening on http://localhost:%d", *port)
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
