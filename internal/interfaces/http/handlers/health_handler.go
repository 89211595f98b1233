package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// ComponentChecker reports whether one dependency is reachable.
type ComponentChecker func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	modelVersion string
	checkers     map[string]ComponentChecker
}

// NewHealthHandler takes the loaded model version and named dependency
// checks (postgres, redis, ...). modelVersion may be "" when the model
// failed to load; readiness then reports degraded.
func NewHealthHandler(modelVersion string, checkers map[string]ComponentChecker) *HealthHandler {
	return &HealthHandler{modelVersion: modelVersion, checkers: checkers}
}

// Liveness handles GET /healthz. It only proves the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, ptypes.HealthResponse{
		Status:       "ok",
		ModelLoaded:  h.modelVersion != "",
		ModelVersion: h.modelVersion,
	})
}

// Readiness handles GET /readyz. Every registered dependency must answer
// within two seconds.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checkers))
	healthy := h.modelVersion != ""
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			components[name] = "down"
			healthy = false
		} else {
			components[name] = "up"
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":        status,
		"model_loaded":  h.modelVersion != "",
		"model_version": h.modelVersion,
		"components":    components,
	})
}
