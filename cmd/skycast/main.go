package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/skycast-app/skycast/internal/adapter/http"
	"github.com/skycast-app/skycast/internal/adapter/openmeteo"
	"github.com/skycast-app/skycast/internal/config"
	"github.com/skycast-app/skycast/internal/observability"
	"github.com/skycast-app/skycast/internal/session"
	"github.com/skycast-app/skycast/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Pick the persistence backend for session settings.
	var kv store.KV
	var redisKV *store.Redis
	switch cfg.StorageBackend {
	case "redis":
		redisKV = store.NewRedis(cfg.RedisAddr, "skycast:")
		kv = redisKV
		logger.Info("using redis settings storage", "addr", cfg.RedisAddr)
	case "file":
		kv = store.NewFile(cfg.StoragePath)
		logger.Info("using file settings storage", "path", cfg.StoragePath)
	default:
		kv = store.NewMemory()
		logger.Info("using in-memory settings storage")
	}
	locations := store.NewLocationStore(kv, logger, metrics)

	client := openmeteo.NewClient(cfg.GeocodeTimeout, cfg.ForecastTimeout, cfg.GeocodeLimit, clock, logger, metrics)
	geocoder := openmeteo.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)

	sess := session.New(geocoder, client, locations, clock, cfg.RefreshInterval, logger, metrics)
	reloader := session.NewReloader(clock, cfg.ReloadInterval, sess.Reload, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess.Start(ctx)

	// Independent recurring reset; owns its own cancellation via ctx.
	go reloader.Run(ctx)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	sess.Close()
	if redisKV != nil {
		if err := redisKV.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
