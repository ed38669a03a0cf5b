// Package app wires configuration, backing store clients and services into a
// ready Dispatcher. Handles are read-only once built.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"docbridge/internal/config"
	"docbridge/internal/database"
	"docbridge/internal/database/migration"
	"docbridge/internal/dispatcher"
	"docbridge/internal/fetcher"
	"docbridge/internal/logging"
	"docbridge/internal/metrics"
	"docbridge/internal/otel"
	"docbridge/internal/repository"
	"docbridge/internal/repository/firestore"
	"docbridge/internal/repository/postgres"
	"docbridge/internal/retry"
	"docbridge/internal/service"
	"docbridge/internal/storage"
)

// App is the process-wide handle set.
type App struct {
	Config     *config.AppConfig
	Logger     *zap.Logger
	DB         *sql.DB
	Storage    storage.Storage
	Documents  repository.DocumentRepository
	Fetcher    fetcher.Fetcher
	Metrics    *metrics.Ingestion
	Dispatcher *dispatcher.Dispatcher

	closers []func() error
}

// New validates cfg and builds every handle. Metrics are registered on reg;
// a nil reg skips metrics.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}

	store, err := a.newStorage(ctx)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.Storage = store

	repo, retryable, err := a.newRepository(ctx)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	policy := retry.Default(retryable)
	policy.OnRetry = func(err error, next time.Duration) {
		logger.Warn("transient table store error, retrying",
			zap.String("component", "repository"),
			zap.Duration("backoff", next),
			zap.Error(err))
	}
	a.Documents = repository.NewRetrying(repo, policy)

	if reg != nil {
		m, err := metrics.NewIngestion(reg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("register metrics: %w", err), a.Close())
		}
		a.Metrics = m
	}

	a.Fetcher = fetcher.New(cfg.Fetch)
	a.Dispatcher = dispatcher.New(
		service.NewIngestor(a.Fetcher, a.Storage, a.Documents, a.Metrics),
		service.NewLister(a.Documents),
		logger,
	)

	logger.Info("app initialized",
		zap.String("storage_driver", cfg.StorageDriver),
		zap.String("records_driver", cfg.RecordsDriver))
	return a, nil
}

func (a *App) newStorage(ctx context.Context) (storage.Storage, error) {
	switch a.Config.StorageDriver {
	case config.StorageDriverGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return storage.NewGCSWithClient(client, a.Config.GCS.Bucket)
	default:
		store, err := storage.NewMinIO(ctx, a.Config.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		return store, nil
	}
}

func (a *App) newRepository(ctx context.Context) (repository.DocumentRepository, func(error) bool, error) {
	switch a.Config.RecordsDriver {
	case config.RecordsDriverFirestore:
		client, err := firestore.NewClient(ctx, a.Config.Firestore.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, client.Close)
		repo, err := firestore.NewDocumentFirestore(client, a.Config.Firestore.Collection)
		if err != nil {
			return nil, nil, err
		}
		return repo, firestore.IsTransient, nil
	default:
		db, err := database.NewPostgres(ctx, a.Config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)

		if a.Config.Database.AutoMigrate {
			table, err := postgres.QuoteTable(a.Config.Database.Table)
			if err != nil {
				return nil, nil, err
			}
			if err := migration.EnsureMigrated(ctx, db, table, a.Logger); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}

		repo, err := postgres.NewDocumentPostgres(db, a.Config.Database.Table)
		if err != nil {
			return nil, nil, err
		}
		return repo, postgres.IsTransient, nil
	}
}

// PingContext reports whether the table store is reachable. Stores without a
// cheap ping are reported healthy.
func (a *App) PingContext(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

// Close releases every client opened by New, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

var (
	mu     sync.Mutex
	shared *App

	// build constructs the process-wide App. Tests replace it.
	build = buildFromEnv
)

// Ensure returns the process-wide App, building it on first use from the
// environment. Only a successful build is kept: after a failure the next call
// builds again, so a cold start that hit an unavailable backend can recover.
func Ensure(ctx context.Context) (*App, error) {
	mu.Lock()
	defer mu.Unlock()

	if shared != nil {
		return shared, nil
	}
	a, err := build(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	shared = a
	return shared, nil
}

// buildFromEnv loads the configuration, starts tracing and builds the App.
// Tracing is shut down with the App, or right away when the build fails.
func buildFromEnv(ctx context.Context) (*App, error) {
	cfg := config.Load()
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	shutdown, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		shutdown = func(context.Context) error { return nil }
	}

	a, err := New(ctx, cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("app initialization failed", zap.Error(err))
		_ = shutdown(ctx)
		_ = logger.Sync()
		return nil, err
	}
	a.closers = append([]func() error{func() error {
		return shutdown(context.Background())
	}}, a.closers...)
	return a, nil
}
