package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Pipeline tuning.
	Workers        int
	WeatherSamples int
	TrafficSamples int
	WeatherTimeout time.Duration

	// TomTom geocoding/routing/traffic configuration.
	TomTomKey        string
	TomTomTimeout    time.Duration
	GeocodeCacheSize int

	// Learned risk model (optional; empty URL disables it).
	RiskModelURL     string
	RiskModelTimeout time.Duration

	// Generative explanation (optional; empty URL disables it).
	LLMURL     string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Kafka notification sink (optional).
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaNotifyTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	tomtomTimeout, err := envDuration("TOMTOM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := envDuration("WEATHER_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	riskModelTimeout, err := envDuration("RISK_MODEL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	llmTimeout, err := envDuration("LLM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	workers, err := envInt("PIPELINE_WORKERS", 4, 1, 64)
	if err != nil {
		return nil, err
	}
	weatherSamples, err := envInt("WEATHER_SAMPLES", 5, 1, 10)
	if err != nil {
		return nil, err
	}
	trafficSamples, err := envInt("TRAFFIC_SAMPLES", 3, 1, 10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("GEOCODE_CACHE_SIZE", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	notifyTopic := os.Getenv("KAFKA_NOTIFY_TOPIC")
	kafkaEnabled := notifyTopic != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Workers:        workers,
		WeatherSamples: weatherSamples,
		TrafficSamples: trafficSamples,
		WeatherTimeout: weatherTimeout,

		TomTomKey:        os.Getenv("TOMTOM_KEY"),
		TomTomTimeout:    tomtomTimeout,
		GeocodeCacheSize: cacheSize,

		RiskModelURL:     os.Getenv("RISK_MODEL_URL"),
		RiskModelTimeout: riskModelTimeout,

		LLMURL:     os.Getenv("LLM_URL"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   envOrDefault("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout: llmTimeout,

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotifyTopic: notifyTopic,
	}

	if cfg.TomTomKey == "" {
		return nil, fmt.Errorf("TOMTOM_KEY is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaNotifyTopic == "" {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_NOTIFY_TOPIC is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func envInt(key string, def, minVal, maxVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minVal || n > maxVal {
		return 0, fmt.Errorf("invalid %s: %q (must be %d-%d)", key, v, minVal, maxVal)
	}
	return n, nil
}

func parseBrokers(value string) []string {
	parts := strings.Split(value, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
