package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/cache"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/config"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/database"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/digest"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		db.Close()
	}()

	var store cache.Cache
	if cfg.Cache.Enabled {
		redisCache := cache.NewRedisCache(cfg.Cache.Addr)
		defer func() {
			if err := redisCache.Close(); err != nil {
				logger.Warn("redis close failed", slog.String("error", err.Error()))
			}
		}()
		store = redisCache
	} else {
		store = cache.NewMemoryCache()
	}

	e, deps := server.New(cfg, logger, db, store)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	if cfg.Digest.Enabled {
		scheduler := digest.NewScheduler(deps.Snapshots, deps.RefreshTokens, deps.Hub, cfg.Forecast, cfg.Digest, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error("failed to start digest scheduler", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer scheduler.Stop()
	}

	go func() {
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}
