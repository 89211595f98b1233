// Command apiserver runs the solubility prediction HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akash-acog/sol/internal/application/prediction"
	"github.com/akash-acog/sol/internal/config"
	"github.com/akash-acog/sol/internal/domain/solvent"
	"github.com/akash-acog/sol/internal/infrastructure/database/postgres"
	"github.com/akash-acog/sol/internal/infrastructure/database/postgres/repositories"
	"github.com/akash-acog/sol/internal/infrastructure/database/redis"
	"github.com/akash-acog/sol/internal/infrastructure/messaging/kafka"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/prometheus"
	"github.com/akash-acog/sol/internal/infrastructure/storage"
	"github.com/akash-acog/sol/internal/infrastructure/storage/minio"
	httpserver "github.com/akash-acog/sol/internal/interfaces/http"
	"github.com/akash-acog/sol/internal/interfaces/http/handlers"
	"github.com/akash-acog/sol/internal/interfaces/http/middleware"
	"github.com/akash-acog/sol/pkg/errors"
)

const solventGraphTTL = 24 * time.Hour

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: outputPaths(cfg.Log.Output),
	})
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "sol",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics init: %w", err)
	}
	appMetrics := prometheus.NewAppMetrics(collector)

	checkers := map[string]handlers.ComponentChecker{}

	source, closeSource, err := checkpointSource(ctx, cfg, logger, checkers)
	if err != nil {
		return err
	}
	if closeSource != nil {
		defer closeSource()
	}

	model, featurizer, err := prediction.BuildPredictor(ctx, cfg.Model, cfg.Featurizer, source, logger)
	if err != nil {
		return fmt.Errorf("model init: %w", err)
	}

	registry, historyRepo, closeDB, err := setupPostgres(ctx, cfg, logger, checkers)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}

	opts := []prediction.Option{
		prediction.WithMetrics(appMetrics),
		prediction.WithMaxBatchSize(cfg.Model.MaxBatchSize),
	}
	if historyRepo != nil {
		opts = append(opts, prediction.WithHistory(historyRepo))
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		defer redisClient.Close()
		checkers["redis"] = redisClient.Ping
		opts = append(opts, prediction.WithRemoteCache(redis.NewCache(redisClient, logger), solventGraphTTL))
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return fmt.Errorf("kafka init: %w", err)
		}
		defer producer.Close()
		opts = append(opts, prediction.WithPublisher(producer))
	}

	svc, err := prediction.NewService(model, featurizer, registry, logger, opts...)
	if err != nil {
		return fmt.Errorf("service init: %w", err)
	}

	var history handlers.HistoryReader
	if historyRepo != nil {
		history = historyRepo
	}

	var limiter middleware.RateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = middleware.NewTokenBucketLimiter(float64(cfg.Server.RateLimitRPS), cfg.Server.RateLimitRPS*2)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		PredictionHandler: handlers.NewPredictionHandler(svc, history),
		SolventHandler:    handlers.NewSolventHandler(svc),
		HealthHandler:     handlers.NewHealthHandler(svc.ModelVersion(), checkers),
		Logger:            logger,
		Metrics:           appMetrics,
		MetricsPage:       collector.Handler(),
		RateLimiter:       limiter,
		Mode:              cfg.Server.Mode,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info("apiserver started",
		logging.Int("port", cfg.Server.Port),
		logging.String("model_version", svc.ModelVersion()))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("apiserver stopped")
	return nil
}

// loadConfig reads the config file when present, otherwise builds the
// configuration from SOL_* environment variables only.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func outputPaths(output string) []string {
	if output == "" {
		return nil
	}
	return []string{output}
}

// checkpointSource picks the weight source named by the model config. A nil
// source leaves the model randomly initialized, which is only acceptable for
// local smoke runs; the loader logs a warning in that case.
func checkpointSource(ctx context.Context, cfg *config.Config, logger logging.Logger, checkers map[string]handlers.ComponentChecker) (prediction.CheckpointSource, func(), error) {
	switch cfg.Model.CheckpointSource {
	case "filesystem":
		src, err := storage.NewFileSource(cfg.Model.CheckpointPath)
		if err != nil {
			return nil, nil, fmt.Errorf("checkpoint source: %w", err)
		}
		return src, nil, nil

	case "minio":
		client, err := minio.NewClient(cfg.MinIO, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("minio init: %w", err)
		}
		store, err := minio.NewCheckpointStore(client, cfg.Model.CheckpointPath, logger)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("checkpoint store: %w", err)
		}
		checkers["minio"] = client.Ping
		return store, func() { client.Close() }, nil

	case "":
		return nil, nil, nil

	default:
		return nil, nil, errors.Newf(errors.ErrCodeValidation,
			"unknown checkpoint source %q", cfg.Model.CheckpointSource)
	}
}

// setupPostgres connects to the history database when enabled, returning the
// solvent registry either way. With the database disabled the builtin
// catalogue serves solvent metadata and history is off.
func setupPostgres(ctx context.Context, cfg *config.Config, logger logging.Logger, checkers map[string]handlers.ComponentChecker) (registry solvent.Registry, repo *repositories.PredictionRepository, closeFn func(), err error) {
	if !cfg.Database.Enabled {
		return solvent.NewRegistry(), nil, nil, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("postgres init: %w", err)
	}
	if err := pool.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres schema: %w", err)
	}

	registry, err = repositories.LoadSolventRegistry(ctx, pool.Pgx(), logger)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("solvent registry: %w", err)
	}

	checkers["postgres"] = pool.HealthCheck
	repo = repositories.NewPredictionRepository(pool.Pgx(), logger)
	return registry, repo, pool.Close, nil
}
