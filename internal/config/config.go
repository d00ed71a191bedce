package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	// Kafka sink for cleaned records. Disabled unless brokers are configured.
	KafkaBrokers       []string
	KafkaSinkTopic     string
	KafkaEnabled       bool
	PublishMaxAttempts int

	// Column names in station files.
	PrecipColumn string
	TempColumn   string
	WindColumn   string

	// Correction output modes and rate-classifier cutoffs.
	UndercatchInPlace  bool
	WettingLossInPlace bool
	TraceCutoff        float64
	HighCutoff         float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	undercatchInPlace, err := parseBool("UNDERCATCH_IN_PLACE", true)
	if err != nil {
		return nil, err
	}
	wettingLossInPlace, err := parseBool("WETTING_LOSS_IN_PLACE", true)
	if err != nil {
		return nil, err
	}
	traceCutoff, err := parseFloat("TRACE_CUTOFF", 0.25)
	if err != nil {
		return nil, err
	}
	highCutoff, err := parseFloat("HIGH_CUTOFF", 2.5)
	if err != nil {
		return nil, err
	}
	attempts, err := parsePositiveInt("PUBLISH_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	maxUpload, err := parsePositiveInt("MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		MaxUploadBytes:  int64(maxUpload),

		KafkaBrokers:       brokers,
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cleaned-weather-data"),
		KafkaEnabled:       kafkaEnabled,
		PublishMaxAttempts: attempts,

		PrecipColumn: sharedcfg.EnvOrDefault("PRECIP_COLUMN", "precip"),
		TempColumn:   sharedcfg.EnvOrDefault("TEMP_COLUMN", "temp"),
		WindColumn:   sharedcfg.EnvOrDefault("WIND_COLUMN", "wind_speed"),

		UndercatchInPlace:  undercatchInPlace,
		WettingLossInPlace: wettingLossInPlace,
		TraceCutoff:        traceCutoff,
		HighCutoff:         highCutoff,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.PrecipColumn == "" || cfg.TempColumn == "" || cfg.WindColumn == "" {
		return nil, errors.New("PRECIP_COLUMN, TEMP_COLUMN and WIND_COLUMN must not be empty")
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
