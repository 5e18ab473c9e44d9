package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"content_syncer/internal/config"
	"content_syncer/internal/extract"
	"content_syncer/internal/fetch"
	"content_syncer/internal/platform/youtube"
	"content_syncer/internal/publisher"
	"content_syncer/internal/scheduler"
	"content_syncer/internal/service"
	"content_syncer/internal/storage/postgres"
	"content_syncer/internal/validate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize RabbitMQ publisher
	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	// Initialize stores
	sourceStore := postgres.NewSourceStore(db)
	contentItemStore := postgres.NewContentItemStore(db)
	txManager := postgres.NewTransactionManager(db)

	// Outbound clients
	fetcher := fetch.New(cfg.HTTP.Timeout)
	ytClient, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, logger)
	if err != nil {
		logger.Error("failed to create youtube client", "error", err)
		os.Exit(1)
	}

	validator := validate.NewService(fetcher, ytClient, logger)

	syncService := service.NewSyncService(
		sourceStore,
		contentItemStore,
		txManager,
		fetcher,
		[]service.Extractor{
			extract.NewCSVExtractor(logger),
			extract.NewRSSExtractor(logger),
			extract.NewYouTubeExtractor(ytClient, logger),
		},
		validator,
		rabbitMQ,
		logger,
	)

	sched := scheduler.NewScheduler(syncService, sourceStore, cfg.Sync.Interval, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting content syncer", "interval", cfg.Sync.Interval)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	// Let in-flight reconciliations drain before exiting.
	syncService.Wait()
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
