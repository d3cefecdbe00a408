package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gonotes/notes-service/handlers"
	"github.com/gonotes/notes-service/internal/config"
	"github.com/gonotes/notes-service/internal/note/handler"
	"github.com/gonotes/notes-service/internal/note/service"
	"github.com/gonotes/notes-service/pkg/logger"
	"github.com/gonotes/notes-service/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the notes API and the operational endpoints on top of st.
// Metrics collectors are registered by the caller.
func NewRouter(cfg *config.Config, st *Stores, svc service.Service) *gin.Engine {
	r := gin.New()

	// Lightweight CORS for development: common headers, OPTIONS answered here.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(logger.GinMiddleware(), gin.Recovery())

	handlers.RegisterHealth(r, st.Ready)
	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var extra []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && st.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			extra = append(extra, middleware.RedisRateLimitMiddleware(st.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter: redis fixed window (%v rps, burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		} else {
			extra = append(extra, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: in-process token bucket (%v rps, burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}
	handler.RegisterNoteRoutes(r, svc, extra...)
	return r
}
