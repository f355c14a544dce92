package server

import (
	"context"
	"net/http"
	"time"

	"chargeslot/internal/api"
	"chargeslot/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck checks one dependency, e.g. the database or the mail queue.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Health reports 503 when any check fails.
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /health [get]
func Health(checks ...HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				logger.Warn("Health check failed", "check", hc.Name, "error", err)
				c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable: " + hc.Name})
				return
			}
		}

		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
