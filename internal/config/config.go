package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Session timing. RefreshInterval drives the silent forecast
	// auto-refresh; ReloadInterval drives the unconditional full session
	// reset. The defaults preserve the source's 1:60 ratio.
	RefreshInterval time.Duration
	ReloadInterval  time.Duration

	// Outbound Open-Meteo configuration.
	GeocodeTimeout   time.Duration
	ForecastTimeout  time.Duration
	GeocodeCacheSize int
	GeocodeLimit     int

	// Persistence backend: "memory", "file", or "redis".
	StorageBackend string
	StoragePath    string
	RedisAddr      string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded best-effort.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	reloadInterval, err := parseDuration("RELOAD_INTERVAL", "60m")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	forecastTimeout, err := parseDuration("FORECAST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RefreshInterval: refreshInterval,
		ReloadInterval:  reloadInterval,

		GeocodeTimeout:   geocodeTimeout,
		ForecastTimeout:  forecastTimeout,
		GeocodeCacheSize: envIntOrDefault("GEOCODE_CACHE_SIZE", 256),
		GeocodeLimit:     envIntOrDefault("GEOCODE_LIMIT", 10),

		StorageBackend: envOrDefault("STORAGE_BACKEND", "file"),
		StoragePath:    envOrDefault("STORAGE_PATH", "skycast-settings.json"),
		RedisAddr:      envOrDefault("REDIS_ADDR", "localhost:6379"),
	}

	if cfg.ReloadInterval <= cfg.RefreshInterval {
		return nil, errors.New("RELOAD_INTERVAL must be longer than REFRESH_INTERVAL")
	}
	switch cfg.StorageBackend {
	case "memory", "file", "redis":
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "file" && cfg.StoragePath == "" {
		return nil, errors.New("STORAGE_PATH is required for the file backend")
	}
	if cfg.GeocodeLimit <= 0 {
		return nil, errors.New("GEOCODE_LIMIT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
