package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/Ramsey-B/clover/pkg/scoring"
)

// ConfigFileEnv names the variable holding an optional YAML config path.
const ConfigFileEnv = "CLOVER_CONFIG"

// envKeys maps the service environment variables onto config keys. Scoring
// weights are set through CLOVER_SCORING_<SECTION>_<NAME>, for example
// CLOVER_SCORING_MATCH_PRIMARY_POSITION.
var envKeys = map[string]string{
	"APP_NAME":                                "app_name",
	"APP_VERSION":                             "version",
	"PORT":                                    "port",
	"LOG_LEVEL":                               "log_level",
	"PRETTY_LOGS":                             "pretty_logs",
	"STARTUP_MAX_ATTEMPTS":                    "startup_max_attempts",
	"HTTP_SERVER_WRITE_TIMEOUT":               "http.write_timeout",
	"HTTP_SERVER_READ_TIMEOUT":                "http.read_timeout",
	"HTTP_SERVER_IDLE_TIMEOUT":                "http.idle_timeout",
	"HTTP_SERVER_READ_HEADER_TIMEOUT":         "http.read_header_timeout",
	"HTTP_SERVER_MAX_HEADER_BYTES":            "http.max_header_bytes",
	"HTTP_SERVER_ALLOW_ORIGINS":               "http.allow_origins",
	"HTTP_SERVER_ALLOW_METHODS":               "http.allow_methods",
	"DB_DRIVER":                               "database.driver",
	"DB_HOST":                                 "database.host",
	"DB_PORT":                                 "database.port",
	"DB_USER_NAME":                            "database.user",
	"DB_PASSWORD":                             "database.password",
	"DB_NAME":                                 "database.name",
	"DB_SSL_MODE":                             "database.ssl_mode",
	"DB_MAX_OPEN_CONNS":                       "database.max_open_conns",
	"DB_MAX_IDLE_CONNS":                       "database.max_idle_conns",
	"DB_CONN_MAX_LIFETIME":                    "database.conn_max_lifetime",
	"DB_MIGRATION_FOLDER_PATH":                "database.migration_folder_path",
	"DB_MIGRATION_VERSION":                    "database.migration_version",
	"DB_MIGRATION_FORCE":                      "database.migration_force",
	"DB_MIGRATION_AUTO_ROLLBACK":              "database.migration_auto_rollback",
	"REDIS_ENABLED":                           "redis.enabled",
	"REDIS_HOST":                              "redis.host",
	"REDIS_PORT":                              "redis.port",
	"REDIS_PASSWORD":                          "redis.password",
	"REDIS_DB":                                "redis.db",
	"REDIS_PREFIX":                            "redis.prefix",
	"REDIS_CACHE_TTL":                         "redis.cache_ttl",
	"KAFKA_BROKERS":                           "kafka.brokers",
	"KAFKA_PIPELINE_TOPIC":                    "kafka.topic",
	"KAFKA_BATCH_SIZE":                        "kafka.batch_size",
	"KAFKA_BATCH_TIMEOUT":                     "kafka.batch_timeout",
	"KAFKA_REQUIRED_ACKS":                     "kafka.required_acks",
	"KAFKA_COMPRESSION":                       "kafka.compression",
	"KAFKA_ASYNC":                             "kafka.async",
	"OTEL_EXPORTER_ENDPOINT":                  "tracing.endpoint",
	"OTEL_EXPORTER_PROTOCOL":                  "tracing.protocol",
	"OTEL_EXPORTER_INSECURE":                  "tracing.insecure",
	"OTEL_SAMPLE_RATIO":                       "tracing.sample_ratio",
	"RECRUITING_LEGACY_NEEDS_YEARS":           "recruiting.legacy_needs_years",
	"CLOVER_SCORING_LIMITS_CANDIDATE_POOL":    "scoring.limits.candidate_pool_size",
	"CLOVER_SCORING_LIMITS_RESULT_LIMIT":      "scoring.limits.result_limit",
	"CLOVER_SCORING_LIMITS_TRENDING_VIEWS":    "scoring.limits.trending_view_threshold",
	"CLOVER_SCORING_LIMITS_DISCOVER_METRICS":  "scoring.limits.discover_metric_limit",
	"CLOVER_SCORING_TRENDING_RECENCY_WINDOW":  "scoring.trending.recency_window_days",
	"CLOVER_SCORING_TRENDING_VIDEO_BONUS":     "scoring.trending.video_bonus",
	"CLOVER_SCORING_MATCH_MAX_SCORE":          "scoring.match.max_score",
	"CLOVER_SCORING_MATCH_PRIMARY_POSITION":   "scoring.match.primary_position",
	"CLOVER_SCORING_MATCH_SECONDARY_POSITION": "scoring.match.secondary_position",
}

func envKey(name string) string {
	return envKeys[strings.ToUpper(name)]
}

// Load layers defaults, an optional YAML file named by CLOVER_CONFIG and the
// environment, lowest precedence first. A .env file in the working directory
// is read into the environment before anything else.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.Wrap(err, "failed to read .env")
	}

	k := koanf.New(".")

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load environment")
	}

	cfg := Default()
	// decoding into a populated slice overwrites by index and keeps the tail
	for key, list := range map[string]*[]string{
		"http.allow_origins": &cfg.HTTP.AllowOrigins,
		"http.allow_methods": &cfg.HTTP.AllowMethods,
		"kafka.brokers":      &cfg.Kafka.Brokers,
	} {
		if k.Exists(key) {
			*list = nil
		}
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0:
		return errors.New("port must be positive")
	case c.Database.Host == "":
		return errors.New("database host must not be empty")
	case c.Scoring.Limits.CandidatePoolSize <= 0:
		return errors.New("scoring.limits.candidate_pool_size must be positive")
	case c.Scoring.Limits.ResultLimit <= 0:
		return errors.New("scoring.limits.result_limit must be positive")
	case c.Scoring.Limits.ResultLimit > c.Scoring.Limits.CandidatePoolSize:
		return errors.New("scoring.limits.result_limit must not exceed candidate_pool_size")
	case c.Scoring.Match.MaxScore < 1 || c.Scoring.Match.MaxScore > scoring.ScoreCeiling:
		return fmt.Errorf("scoring.match.max_score must be between 1 and %d", scoring.ScoreCeiling)
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return errors.New("tracing.sample_ratio must be between 0 and 1")
	}
	return nil
}
