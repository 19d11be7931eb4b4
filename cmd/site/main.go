// cmd/site/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/database"
	"maglinc-site/internal/common/guard"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/common/server"
	submitinquiry "maglinc-site/internal/handlers/contact/submit-inquiry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting site...",
		zap.String("environment", cfg.App.Environment),
		zap.String("backendUrl", cfg.Backend.URL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New("site", log)
	defer obs.Shutdown()

	tp := observability.NewTracerProvider()
	defer observability.ShutdownTracer(tp)

	checks := map[string]server.ReadyCheck{}

	// --- Submission guard ---
	var redis *database.RedisClient
	if cfg.Guard.Backend == "redis" {
		redis = database.NewRedis(cfg.Database.Redis)
		err = server.RetryWithBackoff(ctx, func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		checks["redis"] = redis.Ping
		zapLog.Info("Redis connected successfully")
	}

	backendTimeout := config.GetDuration(cfg.Backend.Timeout)
	guardCfg := cfg.Guard
	guardCfg.TTL = int(guard.TTLFor(backendTimeout, config.GetDuration(cfg.Guard.TTL)).Milliseconds())

	g, err := guard.New(guardCfg, redis)
	if err != nil {
		zapLog.Fatal("failed to create submission guard", zap.Error(err))
	}

	// --- Handlers ---
	handler, err := submitinquiry.NewHandler(submitinquiry.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Guard:         g,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create submit-inquiry handler", zap.Error(err))
	}

	mux := http.NewServeMux()
	handler.Register(mux)
	server.RegisterHealth(mux, checks)

	if err := server.Run(ctx, "site", cfg.Server.Address, mux, cfg.Server, log); err != nil {
		zapLog.Error("Site stopped with error", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("Site stopped gracefully")
}
