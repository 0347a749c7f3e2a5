package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/metar-minima/internal/solar"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	BatchSize int

	// Verdict sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	DefaultStation       string
	SunCacheSize         int
	LimitsFile           string
	StatsRefreshSchedule string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	sunCacheSize, err := parsePositiveInt("SUN_CACHE_SIZE", 4096)
	if err != nil {
		return nil, err
	}

	maxUpload, err := parsePositiveInt("MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, err
	}

	brokers, brokersSet := os.LookupEnv("KAFKA_BROKERS")
	kafkaEnabled := brokersSet && brokers != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		MaxUploadBytes:  int64(maxUpload),
		BatchSize:       batchSize,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "metar-verdicts"),

		DefaultStation:       sharedcfg.EnvOrDefault("DEFAULT_STATION", solar.DefaultStation),
		SunCacheSize:         sunCacheSize,
		LimitsFile:           os.Getenv("LIMITS_FILE"),
		StatsRefreshSchedule: sharedcfg.EnvOrDefault("STATS_REFRESH_SCHEDULE", "@every 5m"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if !solar.Known(cfg.DefaultStation) {
		return nil, fmt.Errorf("invalid DEFAULT_STATION %q: not a known station", cfg.DefaultStation)
	}
	if _, err := cron.ParseStandard(cfg.StatsRefreshSchedule); err != nil {
		return nil, fmt.Errorf("invalid STATS_REFRESH_SCHEDULE: %w", err)
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
