package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"conti/internal/amqp"
	"conti/internal/config"
	apphttp "conti/internal/http"
	applog "conti/internal/log"
	"conti/internal/services"
	"conti/internal/storage"
	"conti/internal/storage/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// Choose data backend (default: memory, seeded with dev fixtures).
	var store services.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		store = repo
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		mem := memory.New()
		if err := mem.Seed(context.Background(), "dev"); err != nil {
			logger.Error("Failed to seed memory backend", applog.FieldError, err)
			os.Exit(1)
		}
		store = mem
		logger.Info("Initialized memory backend with dev fixtures")
	}
	defer store.Close()

	// The event bus is optional: the ledger works without it, fund
	// notifications just stop flowing.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, fund events disabled", applog.FieldError, err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	catalog := services.NewCatalogService(store)
	entries := services.NewEntryService(store)
	reportSvc := services.NewReportService(store)
	pettyCash := services.NewPettyCashService(store, events)

	srv := apphttp.NewServer(":"+cfg.Port, catalog, entries, reportSvc, pettyCash, apphttp.Options{
		ReportCacheSize:   cfg.ReportCacheSize,
		ReportCacheTTL:    cfg.ReportCacheTTL,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Logger:            logger.WithComponent(applog.ComponentHTTP),
	})

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting conti server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
