package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tc.com/index-collector/pkg/broadcast"
	"tc.com/index-collector/pkg/config"
	"tc.com/index-collector/pkg/exchange"
	"tc.com/index-collector/pkg/index"
	"tc.com/index-collector/pkg/ingest"
	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/metrics"
	"tc.com/index-collector/pkg/storage"
)

const version = "0.1.0-dev"

const observationBuffer = 100

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("index-collector version %s\n", version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting index collector", "version", version, "indices", len(cfg.Indices))

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)

	go func() {
		errChan <- run(ctx, cfg, logger)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("Collector failed", "error", err)
			cancel()
			os.Exit(1)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down gracefully...")
	select {
	case <-errChan:
	case <-shutdownCtx.Done():
	}
	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	// Optional raw observation persistence
	var store *storage.Store
	if cfg.Database.Enabled {
		var err error
		store, err = storage.New(ctx, cfg.Database.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()

		if err := store.SetupRetention(ctx, cfg.Database.RetentionDays); err != nil {
			logger.Warn("Failed to set up retention policy", "error", err)
		}
		logger.Info("Raw observation persistence enabled", "retention_days", cfg.Database.RetentionDays)
	} else {
		logger.Info("Raw observation persistence disabled")
	}

	observations := make(chan index.Observation, observationBuffer)

	definitions, err := cfg.IndexDefinitions()
	if err != nil {
		return fmt.Errorf("failed to resolve index definitions: %w", err)
	}

	calc, err := index.NewCalculator(definitions, observations, logger)
	if err != nil {
		return fmt.Errorf("failed to create calculator: %w", err)
	}

	// One ingestion worker per unique feed
	feeds, err := cfg.UniqueFeeds()
	if err != nil {
		return fmt.Errorf("failed to resolve feeds: %w", err)
	}
	workers := make([]*ingest.Worker, 0, len(feeds))
	for _, feed := range feeds {
		ex, err := exchange.Create(feed.Exchange)
		if err != nil {
			return fmt.Errorf("feed %s: %w", feed.ID, err)
		}

		var workerStore ingest.Store
		if store != nil {
			workerStore = store
		}

		worker := ingest.NewWorker(feed, ex, observations, workerStore, logger)
		worker.SetPollInterval(cfg.Ingest.PollInterval.ToDuration())
		workers = append(workers, worker)
	}

	if len(workers) == 0 {
		return fmt.Errorf("no feeds to ingest")
	}

	for _, worker := range workers {
		go worker.Run(ctx)
	}
	logger.Info("Started ingestion workers", "count", len(workers))

	// Broadcast server blocks until shutdown
	server := broadcast.NewServer(cfg.WebSocket.Address, calc, logger)
	return server.Start(ctx)
}
