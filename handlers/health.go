package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// ReadyFunc reports per-dependency reachability.
type ReadyFunc func(ctx context.Context) map[string]bool

// RegisterHealth mounts /health and /ready. /ready answers 503 when any
// dependency reported by ready is down.
func RegisterHealth(r gin.IRouter, ready ReadyFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{}
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			deps = ready(ctx)
			cancel()
		}
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})
}
