package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/auth"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/cache"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/config"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/handlers"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/notifications"
	"github.com/omarqouqas/cashflowforecaster-sub002/internal/repository"
)

// Deps — зависимости, которые живут дольше одного запроса и нужны
// снаружи сервера: хаб для планировщика рассылки и кэш для закрытия.
type Deps struct {
	Hub           *notifications.Hub
	Cache         cache.Cache
	Snapshots     *repository.SnapshotRepository
	RefreshTokens *repository.RefreshTokenRepository
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, store cache.Cache) (*echo.Echo, Deps) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	definitionRepo := repository.NewDefinitionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	runRepo := repository.NewRunRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager)
	accountHandler := handlers.NewAccountHandler(accountRepo)
	definitionHandler := handlers.NewDefinitionHandler(definitionRepo, accountRepo)
	forecastHandler := handlers.NewForecastHandler(snapshotRepo, runRepo, store, cfg.Cache.TTL, notificationHub, cfg.Forecast, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)
	adminHandler := handlers.NewAdminHandler(adminRepo)

	registerRoutes(
		e,
		authHandler,
		accountHandler,
		definitionHandler,
		forecastHandler,
		notificationHandler,
		adminHandler,
		auth.JWTMiddleware(tokenManager),
		handlers.AdminMiddleware(userRepo, cfg.Admin.Emails),
		rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		rateLimiter(cfg.Forecast.RateLimitPerMinute, cfg.Forecast.RateLimitBurst),
	)

	return e, Deps{Hub: notificationHub, Cache: store, Snapshots: snapshotRepo, RefreshTokens: tokenRepo}
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
