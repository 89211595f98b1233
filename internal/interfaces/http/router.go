// Package http wires the gin route tree and the HTTP server.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/prometheus"
	"github.com/akash-acog/sol/internal/interfaces/http/handlers"
	"github.com/akash-acog/sol/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	PredictionHandler *handlers.PredictionHandler
	SolventHandler    *handlers.SolventHandler
	HealthHandler     *handlers.HealthHandler

	Logger      logging.Logger
	Metrics     *prometheus.AppMetrics
	MetricsPage http.Handler
	RateLimiter middleware.RateLimiter
	Mode        string // gin mode: "debug" | "release" | "test"
}

// NewRouter builds the full route tree as an http.Handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsPage != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsPage))
	}

	api := r.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	if cfg.PredictionHandler != nil {
		api.POST("/predict", cfg.PredictionHandler.Predict)
		api.POST("/predict/batch", cfg.PredictionHandler.PredictBatch)
		api.GET("/predictions", cfg.PredictionHandler.History)
	}
	if cfg.SolventHandler != nil {
		api.GET("/solvents", cfg.SolventHandler.List)
		api.POST("/solvents/analyze", cfg.SolventHandler.Analyze)
	}

	return r
}
