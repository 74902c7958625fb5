package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Stage names accepted by STAGES.
const (
	StageNormalize = "normalize"
	StagePublish   = "publish"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir      string
	SnapshotDate string // empty selects the latest raw snapshot
	Stages       []string
	Quiet        bool

	HTTPAddr        string // empty disables the health/metrics server
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional analytical store.
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string

	// Optional relational store.
	PostgresURL string

	// Optional completion notices.
	KafkaBrokers []string
	KafkaTopic   string
	NATSURL      string
	NATSSubject  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}

	quiet, err := parseBool("HANGARBAY_QUIET")
	if err != nil {
		return nil, err
	}

	stages, err := parseStages(sharedcfg.EnvOrDefault("STAGES", StageNormalize+","+StagePublish))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:      sharedcfg.EnvOrDefault("HANGARBAY_DATA_DIR", dataDir),
		SnapshotDate: os.Getenv("SNAPSHOT_DATE"),
		Stages:       stages,
		Quiet:        quiet,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,

		ClickHouseAddr:     os.Getenv("CLICKHOUSE_ADDR"),
		ClickHouseDatabase: sharedcfg.EnvOrDefault("CLICKHOUSE_DATABASE", "hangarbay"),
		ClickHouseUser:     sharedcfg.EnvOrDefault("CLICKHOUSE_USER", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),

		PostgresURL: os.Getenv("POSTGRES_URL"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "registry-snapshots"),
		NATSURL:      os.Getenv("NATS_URL"),
		NATSSubject:  sharedcfg.EnvOrDefault("NATS_SUBJECT", "hangarbay.snapshot.published"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.SnapshotDate != "" && strings.ContainsAny(cfg.SnapshotDate, `/\`) {
		return nil, errors.New("invalid SNAPSHOT_DATE: must be a directory name")
	}

	return cfg, nil
}

// RunsStage reports whether the named stage is enabled.
func (c *Config) RunsStage(name string) bool {
	for _, s := range c.Stages {
		if s == name {
			return true
		}
	}
	return false
}

// ClickHouseEnabled reports whether the analytical store is configured.
func (c *Config) ClickHouseEnabled() bool { return c.ClickHouseAddr != "" }

// PostgresEnabled reports whether the relational store is configured.
func (c *Config) PostgresEnabled() bool { return c.PostgresURL != "" }

// KafkaEnabled reports whether Kafka completion notices are configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// NATSEnabled reports whether NATS completion notices are configured.
func (c *Config) NATSEnabled() bool { return c.NATSURL != "" }

func defaultDataDir() (string, error) {
	if v := os.Getenv("HANGARBAY_DATA_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve HANGARBAY_DATA_DIR default: %w", err)
	}
	return filepath.Join(home, ".hangarbay", "data"), nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return b, nil
}

func parseStages(value string) ([]string, error) {
	// ParseBrokers is a plain comma-list splitter.
	stages := sharedcfg.ParseBrokers(value)
	if len(stages) == 0 {
		return nil, errors.New("STAGES must name at least one stage")
	}
	for i, s := range stages {
		s = strings.ToLower(s)
		if s != StageNormalize && s != StagePublish {
			return nil, fmt.Errorf("invalid STAGES: unknown stage %q", s)
		}
		stages[i] = s
	}
	return stages, nil
}
