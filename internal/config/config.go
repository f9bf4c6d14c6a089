// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// OpenDataHub endpoints.
	ODHMobilityBase string
	ODHTourismBase  string
	ODHAPIKey       string
	ODHTimeout      time.Duration

	RouteSegment   string
	PositionLat    float64
	PositionLon    float64
	WeatherRadiusM int

	CacheTTL      time.Duration
	DefaultWindow time.Duration
	PollInterval  time.Duration
	WatchRadiusKm float64

	RulesPath string // empty → embedded default rule set

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of important events (optional).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cacheTTL, err := envDuration("CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	window, err := envDuration("DEFAULT_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	pollInterval, err := envDuration("POLL_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	odhTimeout, err := envDuration("ODH_TIMEOUT", 8*time.Second)
	if err != nil {
		return nil, err
	}

	lat, err := envFloat("POSITION_LAT", 46.07)
	if err != nil {
		return nil, err
	}
	lon, err := envFloat("POSITION_LON", 11.12)
	if err != nil {
		return nil, err
	}
	watchRadius, err := envFloat("WATCH_RADIUS_KM", 10)
	if err != nil {
		return nil, err
	}
	weatherRadius, err := envInt("WEATHER_RADIUS_M", 10000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ODHMobilityBase: envOrDefault("ODH_MOBILITY_BASE", "https://mobility.api.opendatahub.com"),
		ODHTourismBase:  envOrDefault("ODH_TOURISM_BASE", "https://tourism.api.opendatahub.com"),
		ODHAPIKey:       os.Getenv("ODH_API_KEY"),
		ODHTimeout:      odhTimeout,

		RouteSegment:   envOrDefault("ROUTE_SEGMENT", "A22"),
		PositionLat:    lat,
		PositionLon:    lon,
		WeatherRadiusM: weatherRadius,

		CacheTTL:      cacheTTL,
		DefaultWindow: window,
		PollInterval:  pollInterval,
		WatchRadiusKm: watchRadius,

		RulesPath: os.Getenv("RULES_PATH"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "important-traffic-events"),
	}
	cfg.KafkaEnabled = os.Getenv("KAFKA_ENABLED") == "true"

	if cfg.ODHMobilityBase == "" {
		return nil, errors.New("ODH_MOBILITY_BASE is required")
	}
	if cfg.RouteSegment == "" {
		return nil, errors.New("ROUTE_SEGMENT is required")
	}
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("CACHE_TTL must be positive")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("POLL_INTERVAL must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

// Position returns the configured static vehicle position.
func (c *Config) Position() (lat, lon float64) {
	return c.PositionLat, c.PositionLon
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
