package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/securegate/securegate/internal/admin"
	"github.com/securegate/securegate/internal/app"
	"github.com/securegate/securegate/internal/auth"
	"github.com/securegate/securegate/internal/directory"
	"github.com/securegate/securegate/internal/gate"
	"github.com/securegate/securegate/internal/observability"
	"github.com/securegate/securegate/internal/platform/cache"
	"github.com/securegate/securegate/internal/platform/db"
	"github.com/securegate/securegate/internal/rbac"
	"github.com/securegate/securegate/internal/resource"
	"github.com/securegate/securegate/internal/token"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Redis only backs login throttling; run without it rather than
	// refusing to start.
	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("redis unavailable, login throttling disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	codec, err := token.NewCodec(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}

	dir := directory.NewRepository(pool)
	resolver := rbac.NewResolver(dir)
	metrics := observability.NewMetrics()

	sessions := auth.NewSessionRepository(pool)
	throttle := auth.NewThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
	authService := auth.NewService(dir, sessions, codec, logger)
	authHandler := auth.NewHandler(logger, authService, throttle)

	adminHandler := admin.NewHandler(logger, dir)
	resourceHandler := resource.NewHandler()

	gateMiddleware := gate.Middleware{
		Codec:    codec,
		Dir:      dir,
		Resolver: resolver,
		Logger:   logger,
		Metrics:  metrics,
		Prefixes: cfg.ProtectedPrefixes,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		AdminHandler:    adminHandler,
		ResourceHandler: resourceHandler,
		Gate:            gateMiddleware,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
