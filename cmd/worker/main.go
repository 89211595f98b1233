// Command worker consumes asynchronous prediction jobs from Kafka, runs
// them through the model and publishes the results.
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
)

const solventGraphTTL = 24 * time.Hour

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka must be enabled for the worker (set kafka.enabled)")
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "sol_worker",
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics init: %w", err)
	}
	appMetrics := prometheus.NewAppMetrics(collector)

	source, closeSource, err := checkpointSource(cfg, logger)
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

	registry, historyRepo, closeDB, err := setupPostgres(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}

	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("kafka producer init: %w", err)
	}
	defer producer.Close()

	opts := []prediction.Option{
		prediction.WithMetrics(appMetrics),
		prediction.WithMaxBatchSize(cfg.Model.MaxBatchSize),
		prediction.WithPublisher(producer),
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
		opts = append(opts, prediction.WithRemoteCache(redis.NewCache(redisClient, logger), solventGraphTTL))
	}

	svc, err := prediction.NewService(model, featurizer, registry, logger, opts...)
	if err != nil {
		return fmt.Errorf("service init: %w", err)
	}

	handler := func(ctx context.Context, job kafka.JobPayload) error {
		start := time.Now()
		_, err := svc.PredictBatch(ctx, job.Requests)
		appMetrics.RecordWorkerJob(err == nil, time.Since(start))
		if err != nil {
			logger.Warn("job failed",
				logging.String("job_id", job.JobID),
				logging.Int("requests", len(job.Requests)),
				logging.Err(err))
			return err
		}
		logger.Info("job completed",
			logging.String("job_id", job.JobID),
			logging.Int("requests", len(job.Requests)),
			logging.Duration("elapsed", time.Since(start)))
		return nil
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Worker, handler, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer init: %w", err)
	}
	defer consumer.Close()

	logger.Info("worker started",
		logging.Strings("brokers", cfg.Kafka.Brokers),
		logging.Int("concurrency", cfg.Worker.Concurrency),
		logging.String("model_version", svc.ModelVersion()))

	if err := consumer.Run(ctx); err != nil {
		return fmt.Errorf("consumer: %w", err)
	}
	logger.Info("worker stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func checkpointSource(cfg *config.Config, logger logging.Logger) (prediction.CheckpointSource, func(), error) {
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
		return store, func() { client.Close() }, nil

	default:
		return nil, nil, nil
	}
}

func setupPostgres(ctx context.Context, cfg *config.Config, logger logging.Logger) (solvent.Registry, *repositories.PredictionRepository, func(), error) {
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

	registry, err := repositories.LoadSolventRegistry(ctx, pool.Pgx(), logger)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("solvent registry: %w", err)
	}

	return registry, repositories.NewPredictionRepository(pool.Pgx(), logger), pool.Close, nil
}
