package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/config"
	"github.com/datalens/datalens-engine/pkg/database"
	"github.com/datalens/datalens-engine/pkg/handlers"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/metrics"
	"github.com/datalens/datalens-engine/pkg/middleware"
	"github.com/datalens/datalens-engine/pkg/quality"
	"github.com/datalens/datalens-engine/pkg/repositories"
	"github.com/datalens/datalens-engine/pkg/services"

	// Register the compiled-in dialects
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/mssql"
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/mysql"
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/postgres"
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/snowflake"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("mongo", logging.SanitizeConnectionString(cfg.Mongo.URI)),
		zap.String("mongo_database", cfg.Mongo.Database),
		zap.Int("sample_limit", cfg.Quality.SampleLimit),
		zap.Duration("connect_timeout", cfg.Datasource.ConnectTimeout()))

	db, err := database.NewConnection(ctx, &database.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Datasource.ConnectTimeout(),
		MaxRetries:     cfg.Mongo.ConnectRetries,
	}, logger.Named("mongo"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Warn("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	adapterFactory := datasource.NewDatasourceAdapterFactory(nil, datasource.AdapterOptions{
		Logger:         logger.Named("datasource"),
		ConnectTimeout: cfg.Datasource.ConnectTimeout(),
	})
	profiler := quality.NewProfiler(adapterFactory, quality.Options{
		SampleLimit:      cfg.Quality.SampleLimit,
		StaleAfterDays:   cfg.Quality.StaleAfterDays,
		MaxFKChecks:      cfg.Quality.MaxFKChecks,
		MinNumericValues: cfg.Quality.MinNumericCount,
		Logger:           logger.Named("quality"),
		Metrics:          m,
	})

	snapshotRepo := repositories.NewSnapshotRepository(db.Database.Collection(cfg.Mongo.Collection))
	schemaService := services.NewSchemaService(snapshotRepo, adapterFactory, m, logger.Named("schema"))
	qualityService := services.NewQualityService(snapshotRepo, profiler, logger.Named("quality"))

	mux := http.NewServeMux()
	mongoPing := handlers.PingerFunc(func(ctx context.Context) error {
		return db.Client.Ping(ctx, readpref.Primary())
	})
	handlers.NewHealthHandler(cfg, mongoPing, logger).RegisterRoutes(mux)
	handlers.NewAdaptersHandler(adapterFactory, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(schemaService, logger).RegisterRoutes(mux)
	handlers.NewQualityHandler(qualityService, logger).RegisterRoutes(mux)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.Chain(mux,
			middleware.Recoverer(logger),
			middleware.RequestLogger(logger),
			middleware.CORS(cfg.CORSAllowedOrigins)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting datalens-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
