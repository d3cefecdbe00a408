package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gonotes/notes-service/internal/config"
	"github.com/gonotes/notes-service/internal/note/service"
	"github.com/gonotes/notes-service/internal/server"
	"github.com/gonotes/notes-service/pkg/logger"
	"github.com/gonotes/notes-service/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	if cfg.Server.Environment == "production" {
		logger.SetOutput(os.Stdout, false)
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: backend=%s redis=%v rate_limit=%v", cfg.Storage.Backend, cfg.Redis.Host != "", cfg.RateLimit.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := server.OpenStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open storage: %v", err)
	}
	defer st.Close(context.Background())

	created, err := st.Tokens.EnsureDefault(ctx, cfg.Storage.DefaultLabel, cfg.Storage.DefaultToken)
	if err != nil {
		logger.Fatalf("failed to initialize token set: %v", err)
	}
	if created {
		logger.Warnf("no token set found; created default token for label %q", cfg.Storage.DefaultLabel)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	svc := service.New(st.Records, st.Tokens, service.SystemClock())
	r := server.NewRouter(cfg, st, svc)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting notes service on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	logger.Info("notes service stopped")
}
