package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/scoring"
)

// inTempDir keeps a developer's .env out of the test.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clover-api", cfg.AppName)
	assert.Equal(t, 3004, cfg.Port)
	assert.Equal(t, "db/pg", cfg.Database.MigrationFolderPath)
	assert.Equal(t, scoring.DefaultWeights(), cfg.Scoring)
	assert.Equal(t, 3, cfg.RecruitingService().LegacyNeedsYears)
	assert.Nil(t, cfg.TracerProvider().OTLP)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	inTempDir(t)
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("PORT", "8088")
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("HTTP_SERVER_ALLOW_METHODS", "GET")
	t.Setenv("OTEL_EXPORTER_ENDPOINT", "collector:4317")
	t.Setenv("CLOVER_SCORING_MATCH_PRIMARY_POSITION", "40")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, "pg.internal", cfg.Postgres().Host)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Producer().Brokers)
	assert.Equal(t, []string{"GET"}, cfg.HTTP.AllowMethods)
	assert.Equal(t, 40, cfg.Scoring.Match.PrimaryPosition)
	assert.Equal(t, 15, cfg.Scoring.Match.SecondaryPosition)
	require.NotNil(t, cfg.TracerProvider().OTLP)
	assert.Equal(t, "collector:4317", cfg.TracerProvider().OTLP.Endpoint)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "clover.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_name: clover-staging
scoring:
  trending:
    video_bonus: 25
  limits:
    result_limit: 10
`), 0o600))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Scoring.Trending.VideoBonus)
	assert.Equal(t, 10, cfg.Scoring.Limits.ResultLimit)
	assert.Equal(t, 100, cfg.Scoring.Limits.CandidatePoolSize)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	t.Setenv(ConfigFileEnv, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_PREFIX=clover-local\n"), 0o600))
	// .env never overrides a variable that is already set, even to ""
	t.Setenv("REDIS_PREFIX", "")
	require.NoError(t, os.Unsetenv("REDIS_PREFIX"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clover-local", cfg.Redis.Prefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port", mutate: func(c *Config) { c.Port = 0 }},
		{name: "database host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "pool size", mutate: func(c *Config) { c.Scoring.Limits.CandidatePoolSize = 0 }},
		{name: "result limit above pool", mutate: func(c *Config) { c.Scoring.Limits.ResultLimit = 500 }},
		{name: "sample ratio", mutate: func(c *Config) { c.Tracing.SampleRatio = 2 }},
		{name: "max score zero", mutate: func(c *Config) { c.Scoring.Match.MaxScore = 0 }},
		{name: "max score above 100", mutate: func(c *Config) { c.Scoring.Match.MaxScore = 101 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
