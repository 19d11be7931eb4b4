// cmd/status-api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"maglinc-site/internal/common/aws"
	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/database"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/common/server"
	liststatus "maglinc-site/internal/handlers/status/list-status"
	"maglinc-site/internal/handlers/status/notify"
	recordstatus "maglinc-site/internal/handlers/status/record-status"
	"maglinc-site/internal/handlers/status/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting status API...", zap.String("environment", cfg.App.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New("status-api", log)
	defer obs.Shutdown()

	tp := observability.NewTracerProvider()
	defer observability.ShutdownTracer(tp)

	// --- Status store ---
	var repo store.Repository
	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = server.RetryWithBackoff(ctx, func() error {
			var err error
			pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
			return err
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		pgRepo := store.NewPostgres(pg)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("failed to create status_checks table", zap.Error(err))
		}
		repo = pgRepo
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		repo = store.NewMemory()
		zapLog.Warn("No database configured, status records are kept in memory")
	}

	// --- Staff notifications ---
	var notifier notify.Notifier = notify.Nop{}
	if notify.Enabled(cfg.Notifications) {
		clients, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create AWS clients", zap.Error(err))
		}
		notifier = notify.NewStaffNotifier(clients.SES, clients.SNS, cfg.Notifications, log)
		zapLog.Info("Staff notifications enabled",
			zap.Bool("email", cfg.Notifications.Email.Enabled),
			zap.Bool("sms", cfg.Notifications.SMS.Enabled),
		)
	}

	// --- Handlers ---
	recordHandler, err := recordstatus.NewHandler(recordstatus.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Repository:    repo,
		Notifier:      notifier,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create record-status handler", zap.Error(err))
	}

	listHandler, err := liststatus.NewHandler(liststatus.HandlerOptions{
		AppConfig:  cfg,
		Logger:     log,
		Repository: repo,
	})
	if err != nil {
		zapLog.Fatal("failed to create list-status handler", zap.Error(err))
	}

	mux := http.NewServeMux()
	recordHandler.Register(mux)
	listHandler.Register(mux)
	server.RegisterHealth(mux, map[string]server.ReadyCheck{repo.Name(): repo.Ping})

	if err := server.Run(ctx, "status-api", cfg.Server.StatusAddress, mux, cfg.Server, log); err != nil {
		zapLog.Error("Status API stopped with error", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("Status API stopped gracefully")
}
