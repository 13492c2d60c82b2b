package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/stocksmarthub/backend/config"
	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/infrastructure/cache"
	"github.com/stocksmarthub/backend/internal/infrastructure/dataset"
	"github.com/stocksmarthub/backend/internal/infrastructure/sources"
	"github.com/stocksmarthub/backend/internal/infrastructure/sqlstore"
	"github.com/stocksmarthub/backend/internal/telemetry"
	"github.com/stocksmarthub/backend/internal/usecase"
)

// app holds the process-wide dependencies shared by every command
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	db      *sqlstore.DB

	logFile io.Closer
	tracing *sdktrace.TracerProvider

	// built on first use; one cache and one sheet per process
	sharedResolver *usecase.Resolver
	sharedDataset  *dataset.CSVDataset
}

// newApp loads configuration, opens the log and connects to the database.
// Schema migrations are applied on every start.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, logFile, err := telemetry.NewLogger(telemetry.LogOptions{
		File:   cfg.Log.File,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: telemetry.NewMetrics(),
		logFile: logFile,
	}

	a.tracing, err = telemetry.NewTracerProvider(ctx, telemetry.TracingOptions{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Server.Environment,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	a.db, err = sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		a.close()
		return nil, err
	}
	if err := sqlstore.Migrate(a.db); err != nil {
		a.close()
		return nil, err
	}

	logger.Debug("application ready",
		"database_driver", cfg.Database.Driver,
		"dataset", cfg.Dataset.Path,
		"cache", cfg.Cache.Path,
		"sources", cfg.Sources.Order,
	)
	return a, nil
}

func (a *app) close() {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.tracing.Shutdown(ctx))
		cancel()
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func (a *app) resolver() (*usecase.Resolver, error) {
	if a.sharedResolver != nil {
		return a.sharedResolver, nil
	}

	imageCache, err := openImageCache(a.cfg.Cache.Path, a.logger)
	if err != nil {
		return nil, err
	}

	src := a.cfg.Sources
	chain, err := sources.BuildChain(src.Order, sources.Options{
		Keyword: sources.KeywordOptions{
			BaseURL:       src.Keyword.BaseURL,
			Width:         src.Keyword.Width,
			Height:        src.Keyword.Height,
			Timeout:       src.Keyword.Timeout,
			RatePerSecond: src.Keyword.RatePerSecond,
			Burst:         src.Keyword.Burst,
		},
		Placeholder:   sources.PlaceholderOptions{BaseURL: src.Placeholder.BaseURL},
		PixabayAPIKey: src.Pixabay.APIKey,
		GoogleAPIKey:  src.Google.APIKey,
		GoogleCX:      src.Google.CX,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build source chain: %w", err)
	}

	a.sharedResolver = usecase.NewResolver(imageCache, chain, usecase.ResolverConfig{
		MaxRetries:  a.cfg.Resolver.MaxRetries,
		BackoffUnit: a.cfg.Resolver.BackoffUnit,
		RoundDelay:  a.cfg.Resolver.RoundDelay,
	}, a.logger, usecase.WithResolverMetrics(a.metrics))
	return a.sharedResolver, nil
}

// openImageCache opens the file cache at path, or an in-memory cache when path is empty
func openImageCache(path string, logger *slog.Logger) (domain.ImageCache, error) {
	if path == "" {
		logger.Warn("cache.path is empty, image cache will not survive this process")
		return cache.NewMemoryCache(), nil
	}
	return cache.OpenFileCache(path, logger)
}

func (a *app) dataset() (*dataset.CSVDataset, error) {
	if a.sharedDataset != nil {
		return a.sharedDataset, nil
	}

	ds, err := dataset.OpenCSVDataset(a.cfg.Dataset.Path, dataset.DefaultColumns, a.cfg.Dataset.Backup, a.logger)
	if err != nil {
		return nil, err
	}
	a.sharedDataset = ds
	return ds, nil
}

func (a *app) products() *sqlstore.ProductRepository {
	return sqlstore.NewProductRepository(a.db)
}

func (a *app) orchestrator() (*usecase.Orchestrator, error) {
	resolver, err := a.resolver()
	if err != nil {
		return nil, err
	}
	ds, err := a.dataset()
	if err != nil {
		return nil, err
	}

	writer := usecase.NewDualTargetWriter(ds, a.products(), a.logger, a.metrics)
	return usecase.NewOrchestrator(ds, resolver, writer, usecase.OrchestratorConfig{
		ProductDelay: a.cfg.Resolver.ProductDelay,
	}, a.logger, a.metrics), nil
}

func (a *app) reconciler() (*usecase.Reconciler, error) {
	ds, err := a.dataset()
	if err != nil {
		return nil, err
	}
	return usecase.NewReconciler(ds, a.products(), a.logger), nil
}
