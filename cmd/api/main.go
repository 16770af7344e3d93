package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/xucheng2024/clinic-booking/internal/api/router"
	"github.com/xucheng2024/clinic-booking/internal/clinic"
	appconfig "github.com/xucheng2024/clinic-booking/internal/config"
	"github.com/xucheng2024/clinic-booking/internal/notify"
	"github.com/xucheng2024/clinic-booking/internal/observability/metrics"
	"github.com/xucheng2024/clinic-booking/internal/remote"
	"github.com/xucheng2024/clinic-booking/internal/schedule"
	"github.com/xucheng2024/clinic-booking/internal/session"
	"github.com/xucheng2024/clinic-booking/internal/visits"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.VisitAPIBaseURL == "" {
		logger.Error("VISIT_API_BASE_URL is required")
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	registry := prometheus.NewRegistry()
	telemetry := metrics.NewRequestTelemetry(registry, cfg.LoadingShowDelay, nil)

	remoteClient, err := remote.New(remote.Config{
		BaseURL:     cfg.VisitAPIBaseURL,
		APIKey:      cfg.VisitAPIKey,
		Timeout:     cfg.RequestTimeout,
		MaxAttempts: cfg.RequestMaxAttempts,
		Backoff:     cfg.RequestBackoff,
		Logger:      logger,
		Telemetry:   telemetry,
	})
	if err != nil {
		logger.Error("failed to build remote client", "error", err)
		os.Exit(1)
	}

	clinicStore := clinic.NewStore(redisClient, remoteClient, cfg.ClinicCacheTTL, logger)

	generator := schedule.NewGenerator(cfg.SlotGranularity, cfg.HorizonDays)
	availability := schedule.NewAvailabilityService(remoteClient, clinicStore, generator, cfg.SlotCapacity, logger)

	listState := visits.NewListState()
	notifier := notify.NewLogNotifier(logger)
	bookingCoordinator := visits.NewBookingCoordinator(remoteClient, clinicStore, listState, notifier, cfg.HorizonDays, logger)
	cancelCoordinator := visits.NewCancellationCoordinator(remoteClient, listState, notifier, logger)

	sessionCache := session.NewCache(redisClient, cfg.SessionTTL, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		SlotsHandler:       schedule.NewHandler(availability, logger),
		VisitsHandler:      visits.NewHandler(bookingCoordinator, cancelCoordinator, listState, remoteClient, logger),
		SessionHandler:     session.NewHandler(sessionCache, remoteClient, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("redis close failed", "error", err)
	}

	logger.Info("server stopped")
}
