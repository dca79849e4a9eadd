package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 60*time.Minute, cfg.ReloadInterval)
	assert.Equal(t, 5*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 10*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 256, cfg.GeocodeCacheSize)
	assert.Equal(t, 10, cfg.GeocodeLimit)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "skycast-settings.json", cfg.StoragePath)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("REFRESH_INTERVAL", "15s")
	t.Setenv("RELOAD_INTERVAL", "10m")
	t.Setenv("GEOCODE_TIMEOUT", "2s")
	t.Setenv("FORECAST_TIMEOUT", "4s")
	t.Setenv("GEOCODE_CACHE_SIZE", "32")
	t.Setenv("GEOCODE_LIMIT", "5")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Minute, cfg.ReloadInterval)
	assert.Equal(t, 2*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 4*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 32, cfg.GeocodeCacheSize)
	assert.Equal(t, 5, cfg.GeocodeLimit)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ReloadMustExceedRefresh(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "10m")
	t.Setenv("RELOAD_INTERVAL", "5m")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := Load()
	assert.Error(t, err)
}
