package server

import (
	"github.com/labstack/echo/v4"

	"github.com/omarqouqas/cashflowforecaster-sub002/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	definitionHandler *handlers.DefinitionHandler,
	forecastHandler *handlers.ForecastHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	authMiddleware echo.MiddlewareFunc,
	adminMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	forecastRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	accounts := api.Group("/accounts", authMiddleware)
	accounts.GET("", accountHandler.List)
	accounts.POST("", accountHandler.Create)
	accounts.GET("/:accountId", accountHandler.Get)
	accounts.PUT("/:accountId", accountHandler.Update)
	accounts.DELETE("/:accountId", accountHandler.Delete)

	definitions := api.Group("/definitions", authMiddleware)
	definitions.GET("", definitionHandler.List)
	definitions.POST("", definitionHandler.Create)
	definitions.GET("/:definitionId", definitionHandler.Get)
	definitions.PUT("/:definitionId", definitionHandler.Update)
	definitions.PATCH("/:definitionId/active", definitionHandler.SetActive)
	definitions.DELETE("/:definitionId", definitionHandler.Delete)

	forecastGroup := api.Group("/forecast", authMiddleware, forecastRateLimiter)
	forecastGroup.GET("", forecastHandler.Get)
	forecastGroup.POST("/scenario", forecastHandler.Scenario)
	forecastGroup.POST("/payments", forecastHandler.Predict)
	forecastGroup.GET("/digest", forecastHandler.Digest)
	forecastGroup.GET("/runs", forecastHandler.ListRuns)
	forecastGroup.GET("/export/json", forecastHandler.ExportJSON)
	forecastGroup.GET("/export/csv", forecastHandler.ExportCSV)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)

	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/runs", adminHandler.ListRuns)
	admin.GET("/usage", adminHandler.Usage)
}
