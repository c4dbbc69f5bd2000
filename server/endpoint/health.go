package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fanin/observability"
	"github.com/kbukum/fanin/version"
)

// Health returns a handler that reports service health including the
// components of every checker. A service that is down answers 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := observability.NewServiceHealth(serviceName, version.Get().Short()).
			Check(c.Request.Context(), checkers...)

		httpStatus := http.StatusOK
		if h.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, h)
	}
}

// Readiness returns a handler for readiness probes. The service is not ready
// while every component is down; a degraded service still takes traffic.
func Readiness(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := observability.NewServiceHealth(serviceName, "").Check(c.Request.Context(), checkers...)

		status, httpStatus := "ready", http.StatusOK
		if h.Status == observability.HealthStatusDown {
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":  status,
			"service": serviceName,
		})
	}
}
