package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  host: localhost\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Equal(t, "http://api.geonames.org", cfg.GeoNames.BaseURL)
	assert.Equal(t, 3, cfg.GitHub.Retry.MaxAttempts)
	assert.Equal(t, 30, cfg.Update.BatchSize)
	assert.Equal(t, 1, cfg.Update.Page)
	assert.Equal(t, time.Hour, cfg.Update.Interval)
	assert.Equal(t, 15, cfg.HTTP.LeaderLimit)
	assert.Equal(t, 7, cfg.HTTP.CalendarPad)
	assert.Equal(t, "streak.updated", cfg.RabbitMQ.RoutingKey)
	assert.True(t, cfg.RabbitMQ.IsEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SEINFELD_TEST_DB_PASSWORD", "s3cret")
	t.Setenv("SEINFELD_TEST_GITHUB_TOKEN", "ghp_token")

	path := writeConfig(t, `
database:
  host: db
  port: 5433
  user: seinfeld
  password: ${SEINFELD_TEST_DB_PASSWORD}
  dbname: seinfeld
github:
  token: ${SEINFELD_TEST_GITHUB_TOKEN}
  timeout: 5s
rabbitmq:
  enabled: false
update:
  interval: 30m
  batch_size: 50
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "host=db port=5433 user=seinfeld password=s3cret dbname=seinfeld sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "ghp_token", cfg.GitHub.Token)
	assert.Equal(t, 5*time.Second, cfg.GitHub.Timeout)
	assert.False(t, cfg.RabbitMQ.IsEnabled())
	assert.Equal(t, 30*time.Minute, cfg.Update.Interval)
	assert.Equal(t, 50, cfg.Update.BatchSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [")

	_, err := Load(path)
	assert.Error(t, err)
}
