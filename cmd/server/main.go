/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the salary estimation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, environment, defaults)
  2. Initialize structured logging
  3. Open the session store (SQLite, or memory when ephemeral)
  4. Restore the session from persisted state
  5. Start the HTTP server with graceful shutdown

CONFIGURATION:
  Via config file (-config flag, YAML), environment variables with the
  SALARY_ prefix, or built-in defaults. Keys:

    port       HTTP server port            (default: 8080)
    database   SQLite database path        (default: salary.db)
    log_level  zap level: debug/info/warn  (default: info)
    ephemeral  keep state in memory only   (default: false)

EXAMPLES:
  # Run with defaults
  ./server

  # Run with a config file
  ./server -config=./config.yaml

  # Override via environment
  SALARY_PORT=3000 SALARY_DATABASE=./data/salary.db ./server

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - session/session.go: State restore on startup
  - store/sqlite/sqlite.go: Database implementation
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
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/api"
	"github.com/warp/salary-engine/session"
	"github.com/warp/salary-engine/store/memory"
	"github.com/warp/salary-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.GetString("log_level"))
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Sync()

	// Store: durable SQLite by default, memory when ephemeral.
	var store session.Store
	if cfg.GetBool("ephemeral") {
		logger.Info("running with ephemeral in-memory store")
		store = memory.New()
	} else {
		dbPath := cfg.GetString("database")
		sqlStore, err := sqlite.New(dbPath)
		if err != nil {
			logger.Fatal("failed to open database", zap.String("path", dbPath), zap.Error(err))
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("session store ready", zap.String("path", dbPath))
	}

	// Restore the session and wire the router.
	sess := session.New(context.Background(), store, logger)
	router := api.NewRouter(api.NewHandler(sess, logger))

	port := cfg.GetInt("port")
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", fmt.Sprintf("http://localhost:%d", port)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// loadConfig layers defaults, an optional YAML file, and SALARY_*
// environment variables.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("database", "salary.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("ephemeral", false)

	v.SetEnvPrefix("salary")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	}
	return v, nil
}

// newLogger builds a production zap logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
