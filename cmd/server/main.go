// Command server runs the Bloodless room-authority process: it loads
// configuration, wires up the HTTP/WebSocket router, and serves until
// it receives a shutdown signal. There is no credential management
// step; this server has no authentication concept.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hemolymph/bloodless-server/internal/config"
	"github.com/hemolymph/bloodless-server/internal/health"
	"github.com/hemolymph/bloodless-server/internal/logging"
	"github.com/hemolymph/bloodless-server/internal/metrics"
	"github.com/hemolymph/bloodless-server/internal/middleware"
	"github.com/hemolymph/bloodless-server/internal/ratelimit"
	"github.com/hemolymph/bloodless-server/internal/registry"
	"github.com/hemolymph/bloodless-server/internal/room"
	"github.com/hemolymph/bloodless-server/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file for local development; missing is fine, the
	// environment may already be populated (container, CI).
	envPaths := []string{".env", "../../.env", "../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg, err := config.ValidateEnv(os.Getenv)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(cfg.LogFormat == "console"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	ctx := context.Background()
	logging.Info(ctx, "starting bloodless-server", zap.String("port", cfg.Port))

	reg := registry.New[room.Room]()
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	limiter, err := ratelimit.New(cfg.RateLimitWSIP, cfg.RateLimitRoomCreate, m)
	if err != nil {
		return fmt.Errorf("failed to build rate limiter: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	router.Use(cors.New(corsCfg))

	ts := transport.NewServer(reg, m, limiter, cfg.AllowedOrigins, cfg.BroadcastBuffer)
	ts.RegisterRoutes(router)

	healthHandler := health.NewHandler(reg)
	router.GET("/healthz", healthHandler.Liveness)
	router.GET("/readyz", healthHandler.Readiness)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logging.Info(ctx, "server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(ctx, "server exited with error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logging.Info(ctx, "server exiting")
	return nil
}
