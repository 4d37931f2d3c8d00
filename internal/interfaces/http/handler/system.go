package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger is a dependency whose liveness the health check reports
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// PingContext calls f
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports service and dependency health
type HealthHandler struct {
	BaseHandler
	version   string
	startTime time.Time
	database  Pinger
	optional  map[string]Pinger
	timeout   time.Duration
}

// NewHealthHandler creates a HealthHandler. The database is required for a
// healthy status; optional dependencies (redis) only report degraded.
func NewHealthHandler(version string, database Pinger) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		database:  database,
		optional:  make(map[string]Pinger),
		timeout:   2 * time.Second,
	}
}

// WithDependency registers an optional dependency
func (h *HealthHandler) WithDependency(name string, p Pinger) *HealthHandler {
	if p != nil {
		h.optional[name] = p
	}
	return h
}

// HealthResponse is the body of GET /health
// @name HealthResponse
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Version   string            `json:"version" example:"1.0.0"`
	GoVersion string            `json:"goVersion" example:"go1.25.5"`
	Uptime    string            `json:"uptime" example:"1h30m45s"`
	Checks    map[string]string `json:"checks"`
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    make(map[string]string, len(h.optional)+1),
	}
	status := http.StatusOK

	if err := h.database.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Error("Health check: database unreachable", zap.Error(err))
		resp.Checks["database"] = "unhealthy"
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = "healthy"
	}

	for name, dep := range h.optional {
		if err := dep.PingContext(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check: dependency unreachable",
				zap.String("dependency", name), zap.Error(err))
			resp.Checks[name] = "unhealthy"
			if resp.Status == "healthy" {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Checks[name] = "healthy"
	}

	c.JSON(status, resp)
}
