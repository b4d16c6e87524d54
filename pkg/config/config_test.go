package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "colloscope", cfg.Postgres.Database)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "lookup-events", cfg.Kafka.Topics.LookupEvents)
	assert.Equal(t, "roster-updated", cfg.Kafka.Topics.RosterUpdated)
	assert.Equal(t, 5, cfg.Lookup.AgendaLimit)
	assert.Empty(t, cfg.Roster.PreloadIDs)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
roster:
  preloadIds: [1, 2, 3]
lookup:
  agendaLimit: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, []int64{1, 2, 3}, cfg.Roster.PreloadIDs)
	assert.Equal(t, 10, cfg.Lookup.AgendaLimit)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CS_SERVER_PORT", "7070")
	t.Setenv("CS_POSTGRES_HOST", "db.internal")
	t.Setenv("CS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CS_ROSTER_PRELOAD_IDS", "17, 42")
	t.Setenv("CS_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []int64{17, 42}, cfg.Roster.PreloadIDs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "h", Port: 5432, Database: "d", User: "u", Password: "p", SSLMode: "disable",
	}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", p.DSN())
}
