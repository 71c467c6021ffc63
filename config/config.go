package config

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/recruiting"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

type Config struct {
	AppName            string `koanf:"app_name" yaml:"app_name"`
	Version            string `koanf:"version" yaml:"version"`
	Port               int    `koanf:"port" yaml:"port"`
	LogLevel           string `koanf:"log_level" yaml:"log_level"`
	PrettyLogs         bool   `koanf:"pretty_logs" yaml:"pretty_logs"`
	StartupMaxAttempts int    `koanf:"startup_max_attempts" yaml:"startup_max_attempts"`

	HTTP       HTTPConfig       `koanf:"http" yaml:"http"`
	Database   DatabaseConfig   `koanf:"database" yaml:"database"`
	Redis      RedisConfig      `koanf:"redis" yaml:"redis"`
	Kafka      KafkaConfig      `koanf:"kafka" yaml:"kafka"`
	Tracing    TracingConfig    `koanf:"tracing" yaml:"tracing"`
	Recruiting RecruitingConfig `koanf:"recruiting" yaml:"recruiting"`
	Scoring    scoring.Weights  `koanf:"scoring" yaml:"scoring"`
}

type HTTPConfig struct {
	WriteTimeout      time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" yaml:"idle_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" yaml:"read_header_timeout"`
	MaxHeaderBytes    int           `koanf:"max_header_bytes" yaml:"max_header_bytes"`
	AllowOrigins      []string      `koanf:"allow_origins" yaml:"allow_origins"`
	AllowMethods      []string      `koanf:"allow_methods" yaml:"allow_methods"`
}

// PostgreSQL
type DatabaseConfig struct {
	Driver                string        `koanf:"driver" yaml:"driver"`
	Host                  string        `koanf:"host" yaml:"host"`
	Port                  string        `koanf:"port" yaml:"port"`
	User                  string        `koanf:"user" yaml:"user"`
	Password              string        `koanf:"password" yaml:"-"`
	Name                  string        `koanf:"name" yaml:"name"`
	SSLMode               string        `koanf:"ssl_mode" yaml:"ssl_mode"`
	MaxOpenConns          int           `koanf:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns          int           `koanf:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime       time.Duration `koanf:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	MigrationFolderPath   string        `koanf:"migration_folder_path" yaml:"migration_folder_path"`
	MigrationVersion      uint          `koanf:"migration_version" yaml:"migration_version"`
	MigrationForce        int           `koanf:"migration_force" yaml:"migration_force"`
	MigrationAutoRollback bool          `koanf:"migration_auto_rollback" yaml:"migration_auto_rollback"`
}

// RedisConfig configures the result cache. A disabled cache serves every
// request from the database.
type RedisConfig struct {
	Enabled  bool          `koanf:"enabled" yaml:"enabled"`
	Host     string        `koanf:"host" yaml:"host"`
	Port     int           `koanf:"port" yaml:"port"`
	Password string        `koanf:"password" yaml:"-"`
	DB       int           `koanf:"db" yaml:"db"`
	Prefix   string        `koanf:"prefix" yaml:"prefix"`
	CacheTTL time.Duration `koanf:"cache_ttl" yaml:"cache_ttl"`
}

// KafkaConfig configures the pipeline event producer. No brokers means no
// events are published.
type KafkaConfig struct {
	Brokers      []string      `koanf:"brokers" yaml:"brokers"`
	Topic        string        `koanf:"topic" yaml:"topic"`
	BatchSize    int           `koanf:"batch_size" yaml:"batch_size"`
	BatchTimeout time.Duration `koanf:"batch_timeout" yaml:"batch_timeout"`
	RequiredAcks int           `koanf:"required_acks" yaml:"required_acks"`
	Compression  string        `koanf:"compression" yaml:"compression"`
	Async        bool          `koanf:"async" yaml:"async"`
}

type TracingConfig struct {
	Endpoint    string  `koanf:"endpoint" yaml:"endpoint"`
	Protocol    string  `koanf:"protocol" yaml:"protocol"`
	Insecure    bool    `koanf:"insecure" yaml:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio" yaml:"sample_ratio"`
}

type RecruitingConfig struct {
	LegacyNeedsYears int `koanf:"legacy_needs_years" yaml:"legacy_needs_years"`
}

func Default() *Config {
	return &Config{
		AppName:            "clover-api",
		Version:            "dev",
		Port:               3004,
		LogLevel:           "info",
		StartupMaxAttempts: 5,
		HTTP: HTTPConfig{
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       10 * time.Second,
			IdleTimeout:       10 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			MaxHeaderBytes:    64000, // 64KB
			AllowOrigins:      []string{"*"},
			AllowMethods:      []string{"GET", "POST", "PUT", "DELETE"},
		},
		Database: DatabaseConfig{
			Driver:                "postgres",
			Host:                  "localhost",
			Port:                  "5432",
			Name:                  "clover",
			SSLMode:               "disable",
			MaxOpenConns:          25,
			MaxIdleConns:          10,
			ConnMaxLifetime:       10 * time.Second,
			MigrationFolderPath:   "db/pg",
			MigrationAutoRollback: true,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Prefix:   "clover",
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:        "pipeline-events",
			BatchSize:    100,
			BatchTimeout: 100 * time.Millisecond,
			RequiredAcks: 1,
			Compression:  "snappy",
		},
		Tracing: TracingConfig{
			Protocol:    "grpc",
			Insecure:    true,
			SampleRatio: 1,
		},
		Recruiting: RecruitingConfig{LegacyNeedsYears: 3},
		Scoring:    scoring.DefaultWeights(),
	}
}

func (c *Config) Postgres() database.Config {
	return database.Config{
		Driver:          c.Database.Driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Name:            c.Database.Name,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

func (c *Config) Migrations() database.MigrationConfig {
	return database.MigrationConfig{
		FolderPath:   c.Database.MigrationFolderPath,
		DatabaseName: c.Database.Name,
		Version:      c.Database.MigrationVersion,
		Force:        c.Database.MigrationForce,
		AutoRollback: c.Database.MigrationAutoRollback,
	}
}

func (c *Config) RedisClient() redis.Config {
	return redis.Config{
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

func (c *Config) Producer() kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      c.Kafka.Brokers,
		Topic:        c.Kafka.Topic,
		BatchSize:    c.Kafka.BatchSize,
		BatchTimeout: c.Kafka.BatchTimeout,
		RequiredAcks: c.Kafka.RequiredAcks,
		Compression:  c.Kafka.Compression,
		Async:        c.Kafka.Async,
	}
}

func (c *Config) TracerProvider() tracing.ProviderConfig {
	cfg := tracing.ProviderConfig{
		ServiceName: c.AppName,
		Version:     c.Version,
		SampleRatio: c.Tracing.SampleRatio,
	}
	if c.Tracing.Endpoint != "" {
		cfg.OTLP = &exporters.OTLPConfig{
			Endpoint: c.Tracing.Endpoint,
			Protocol: c.Tracing.Protocol,
			Insecure: c.Tracing.Insecure,
		}
	}
	return cfg
}

func (c *Config) RecruitingService() recruiting.Config {
	return recruiting.Config{
		Weights:          c.Scoring,
		LegacyNeedsYears: c.Recruiting.LegacyNeedsYears,
		CacheTTL:         c.Redis.CacheTTL,
	}
}
