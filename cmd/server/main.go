package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/api"
	"github.com/secretwatch/expiry-tracker/internal/config"
	"github.com/secretwatch/expiry-tracker/internal/db"
	"github.com/secretwatch/expiry-tracker/internal/domain"
	"github.com/secretwatch/expiry-tracker/internal/metrics"
	"github.com/secretwatch/expiry-tracker/internal/notifier"
	"github.com/secretwatch/expiry-tracker/internal/ratelimiter"
	"github.com/secretwatch/expiry-tracker/internal/repository"
	"github.com/secretwatch/expiry-tracker/internal/scheduler"
	"github.com/secretwatch/expiry-tracker/internal/service"
	"github.com/secretwatch/expiry-tracker/internal/webhook"
)

// meteredRunner wraps the notifier so every scheduled run updates the
// run-level instruments. Delivery-level instruments are fed through the
// notifier hooks instead.
type meteredRunner struct {
	notif *notifier.Notifier
	m     *metrics.Metrics
}

func (r *meteredRunner) RunOnce(ctx context.Context, now time.Time) (*domain.RunResult, error) {
	r.m.RunsTotal.Inc()
	result, err := r.notif.RunOnce(ctx, now)
	if err != nil {
		r.m.RunFailures.Inc()
		return nil, err
	}

	total := 0
	for _, d := range result.Details {
		total += d.SecretsCount
	}
	r.m.ExpiringSecrets.Set(float64(total))
	return result, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	customerRepo := repository.NewPgCustomerRepository(pool)
	secretRepo := repository.NewPgSecretRepository(pool)

	dispatcher := webhook.NewHTTPDispatcher(cfg.WebhookTimeout)
	limiter := ratelimiter.New(cfg.DeliveryRate)

	notif := notifier.New(
		secretRepo, dispatcher, limiter, logger,
		cfg.HorizonDays, cfg.BaseURL, cfg.DeliveryWorkers,
		m.NotifierHooks(),
	)

	customerSvc := service.NewCustomerService(customerRepo, logger)
	secretSvc := service.NewSecretService(secretRepo, customerRepo, logger)

	// ---- daily notification schedule ----
	sched, err := scheduler.New(&meteredRunner{notif: notif, m: m}, logger, cfg.CronSpec, cfg.Timezone)
	if err != nil {
		logger.Fatal("failed to create scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	// ---- HTTP server ----
	router := api.NewRouter(customerSvc, secretSvc, notif, sched, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Deregister the daily job and wait for any in-flight run.
	sched.Stop()

	logger.Info("server stopped cleanly")
}
