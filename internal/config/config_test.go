package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".hangarbay", "data"), cfg.DataDir)
	assert.Empty(t, cfg.SnapshotDate)
	assert.Equal(t, []string{StageNormalize, StagePublish}, cfg.Stages)
	assert.False(t, cfg.Quiet)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "registry-snapshots", cfg.KafkaTopic)
	assert.Equal(t, "hangarbay.snapshot.published", cfg.NATSSubject)
	assert.Equal(t, "hangarbay", cfg.ClickHouseDatabase)

	assert.False(t, cfg.ClickHouseEnabled())
	assert.False(t, cfg.PostgresEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.NATSEnabled())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HANGARBAY_DATA_DIR", "/srv/hangarbay")
	t.Setenv("SNAPSHOT_DATE", "2025-01-15")
	t.Setenv("STAGES", "publish")
	t.Setenv("HANGARBAY_QUIET", "true")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CLICKHOUSE_ADDR", "clickhouse:9000")
	t.Setenv("CLICKHOUSE_DATABASE", "registry")
	t.Setenv("CLICKHOUSE_USER", "etl")
	t.Setenv("CLICKHOUSE_PASSWORD", "secret")
	t.Setenv("POSTGRES_URL", "postgres://etl@db/registry")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "faa-snapshots")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("NATS_SUBJECT", "registry.published")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/hangarbay", cfg.DataDir)
	assert.Equal(t, "2025-01-15", cfg.SnapshotDate)
	assert.Equal(t, []string{StagePublish}, cfg.Stages)
	assert.True(t, cfg.RunsStage(StagePublish))
	assert.False(t, cfg.RunsStage(StageNormalize))
	assert.True(t, cfg.Quiet)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "registry", cfg.ClickHouseDatabase)
	assert.Equal(t, "etl", cfg.ClickHouseUser)
	assert.Equal(t, "secret", cfg.ClickHousePassword)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "faa-snapshots", cfg.KafkaTopic)
	assert.Equal(t, "registry.published", cfg.NATSSubject)

	assert.True(t, cfg.ClickHouseEnabled())
	assert.True(t, cfg.PostgresEnabled())
	assert.True(t, cfg.KafkaEnabled())
	assert.True(t, cfg.NATSEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		errText string
	}{
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"unknown stage", "STAGES", "normalize,fetch", "fetch"},
		{"empty stage list", "STAGES", " , ", "STAGES"},
		{"quiet flag", "HANGARBAY_QUIET", "sometimes", "HANGARBAY_QUIET"},
		{"log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"log format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"snapshot path", "SNAPSHOT_DATE", "../2025-01-15", "SNAPSHOT_DATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HANGARBAY_DATA_DIR", t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoad_StagesNormalizedToLower(t *testing.T) {
	t.Setenv("HANGARBAY_DATA_DIR", t.TempDir())
	t.Setenv("STAGES", "Normalize, PUBLISH")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{StageNormalize, StagePublish}, cfg.Stages)
}
