package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var processStart = time.Now()

// Liveness answers 200 while the process can serve HTTP. It never consults
// upstreams; a broken upstream must not get the aggregator restarted.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   serviceName,
			"uptime_ms": time.Since(processStart).Milliseconds(),
		})
	}
}
