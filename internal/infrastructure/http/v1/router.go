// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"venueledger/internal/infrastructure/http/v1/handlers"
	"venueledger/internal/infrastructure/http/v1/middleware"
	"venueledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Finance serves every /finance endpoint
	Finance handlers.FinanceService

	// History backs GET /reports/:id/history; nil disables it
	History handlers.ReportHistory

	// Idempotency deduplicates retried POSTs; nil disables it
	Idempotency middleware.IdempotencyStore

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// RequestTimeout bounds each API request; 0 disables it
	RequestTimeout time.Duration

	// Version is reported by the liveness probe
	Version string

	// Development switches gin to debug mode
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Timeout(cfg.RequestTimeout))
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.AccessScope())

		if cfg.Idempotency != nil {
			protected.Use(middleware.Idempotency(cfg.Idempotency))
		}

		financeHandler := handlers.NewFinanceHandler(handlers.NewBaseHandler(), cfg.Finance, cfg.History)
		RegisterFinanceRoutes(protected.Group("/finance"), financeHandler)
	}

	return router
}
