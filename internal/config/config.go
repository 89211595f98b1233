// Package config defines all configuration structures for the solubility
// prediction service.  No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    int           `mapstructure:"rate_limit_rps"`
}

// DatabaseConfig holds PostgreSQL connection parameters.  Postgres stores
// prediction history and solvent metadata.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Enabled         bool          `mapstructure:"enabled"`
}

// RedisConfig holds Redis connection parameters.  Redis caches prediction
// results keyed by (solute, solvent, temperature, model version).
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	Enabled      bool          `mapstructure:"enabled"`
}

// KafkaConfig holds Kafka producer/consumer parameters.  Prediction events
// are published to Kafka for downstream analytics.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	PredictionTopic string        `mapstructure:"prediction_topic"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	BatchSize       int           `mapstructure:"batch_size"`
	Enabled         bool          `mapstructure:"enabled"`
}

// MinIOConfig holds S3-compatible object-storage parameters.  Model
// checkpoints are pulled from MinIO when the checkpoint source is "minio".
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ModelConfig selects the network preset and the checkpoint to load.
type ModelConfig struct {
	// Preset names a built-in hyperparameter set: "default", "large" or
	// "with_charges".  An empty value means "default".
	Preset string `mapstructure:"preset"`

	// CheckpointSource is "filesystem" or "minio".
	CheckpointSource string `mapstructure:"checkpoint_source"`

	// CheckpointPath is a local file path or an object key, depending on
	// CheckpointSource.
	CheckpointPath string `mapstructure:"checkpoint_path"`

	// MaxBatchSize caps the number of solute/solvent pairs per forward pass.
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// FeaturizerConfig holds molecule featurization parameters.
type FeaturizerConfig struct {
	// MaxAtoms rejects molecules larger than this after hydrogen
	// materialization.  Zero disables the limit.
	MaxAtoms int `mapstructure:"max_atoms"`

	// PartialCharges appends a Gasteiger-style partial charge to each atom
	// feature vector, growing it by one dimension.  Must match the model
	// preset in use.
	PartialCharges bool `mapstructure:"partial_charges"`
}

// WorkerConfig holds background-worker execution parameters for the async
// prediction consumer.
type WorkerConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// Config is the root configuration structure for the whole service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Model      ModelConfig      `mapstructure:"model"`
	Featurizer FeaturizerConfig `mapstructure:"featurizer"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.  Any
// error is fatal; callers must refuse to start on a validation failure.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when database.enabled")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when database.enabled")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when database.enabled")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be at least 1, got %d", c.Database.MaxConns)
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must not be negative, got %d", c.Redis.DB)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.PredictionTopic == "" {
			return fmt.Errorf("config: kafka.prediction_topic is required when kafka.enabled")
		}
	}

	switch c.Model.Preset {
	case "", "default", "large", "with_charges":
	default:
		return fmt.Errorf("config: model.preset %q is invalid; expected default|large|with_charges", c.Model.Preset)
	}
	switch c.Model.CheckpointSource {
	case "", "filesystem", "minio":
	default:
		return fmt.Errorf("config: model.checkpoint_source %q is invalid; expected filesystem|minio", c.Model.CheckpointSource)
	}
	if c.Model.CheckpointSource == "minio" && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required when model.checkpoint_source is minio")
	}
	if c.Model.MaxBatchSize < 1 {
		return fmt.Errorf("config: model.max_batch_size must be at least 1, got %d", c.Model.MaxBatchSize)
	}

	if c.Featurizer.MaxAtoms < 0 {
		return fmt.Errorf("config: featurizer.max_atoms must not be negative, got %d", c.Featurizer.MaxAtoms)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be at least 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
