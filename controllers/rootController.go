package controllers

import (
	"context"
	"net/http"
	"time"

	"TeleClinic/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "TeleClinic API")
}

func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				logging.FromContext(ctx).Warn("health check failed", zap.String("check", hc.Name), zap.Error(err))
				result[hc.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			result[hc.Name] = "up"
		}
		c.JSON(status, result)
	}
}

// SetupRootRoute registers the root and health routes.
func SetupRootRoute(router *gin.Engine, checks ...HealthCheck) {
	router.GET("/", rootHandler)
	router.GET("/healthz", healthHandler(checks))
}
