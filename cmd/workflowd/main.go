/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payment workflow service: the Postgres
  store, the reference-data collaborator, the workflow orchestrator, and
  an operational-only HTTP surface (/healthz, /metrics). It exposes no
  business HTTP routes — lifecycle operations are invoked in-process or
  over a transport this module does not define.

STARTUP SEQUENCE:
  1. Load configuration (YAML file + environment overrides)
  2. Build the structured logger and start watching the config file for
     log-level hot-reloads
  3. Open the Postgres store and run its migration
  4. Construct the workflow service
  5. Start the operational HTTP server
  6. Wait for SIGINT/SIGTERM and shut down gracefully

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)

ENVIRONMENT:
  PAYMENTFLOW_HTTP_PORT, PAYMENTFLOW_DATABASE_DSN, PAYMENTFLOW_LOG_LEVEL
  override the corresponding config file values.

SEE ALSO:
  - config/config.go: configuration loading
  - obshttp/router.go: health and metrics routes
  - workflow/service.go: the orchestrator
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/warp/paymentflow/config"
	"github.com/warp/paymentflow/logging"
	"github.com/warp/paymentflow/obshttp"
	"github.com/warp/paymentflow/store/postgres"
	"github.com/warp/paymentflow/workflow"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, atomicLevel, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, cfg.LogLevel, func(level string) {
			logging.SetLevel(atomicLevel, level)
			logger.Info("log level reloaded", zap.String("level", level))
		})
		if err != nil {
			logger.Warn("failed to start config watcher, log level will not hot-reload", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := postgres.Open(ctx, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	metrics := workflow.NewMetrics(registry)

	ledgerCollaborator := postgres.NewLedgerStore(store)

	service := workflow.NewService(store, ledgerCollaborator, logger, metrics)
	_ = service // consumed by the transport this module does not define

	router := obshttp.NewRouter(store, registry)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("operational server starting", zap.Int("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
