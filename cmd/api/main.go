package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/calmora/teletherapy-platform/internal/api/router"
	"github.com/calmora/teletherapy-platform/internal/availability"
	"github.com/calmora/teletherapy-platform/internal/bookings"
	appconfig "github.com/calmora/teletherapy-platform/internal/config"
	"github.com/calmora/teletherapy-platform/internal/notify"
	"github.com/calmora/teletherapy-platform/internal/observability/metrics"
	"github.com/calmora/teletherapy-platform/internal/payments"
	"github.com/calmora/teletherapy-platform/internal/therapists"
	"github.com/calmora/teletherapy-platform/internal/video"
	"github.com/calmora/teletherapy-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting teletherapy platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	availabilityMetrics := metrics.NewAvailabilityMetrics(nil)
	bookingMetrics := metrics.NewBookingMetrics(nil)

	availabilityService := availability.NewService(
		availability.NewLegacyStore(pool),
		availability.NewWeeklyStore(pool),
		availability.NewOverrideStore(pool),
		availabilityMetrics,
		logger,
	)

	// Video rooms need redis for room reuse; without it bookings are
	// confirmed without a room URL.
	var rooms bookings.RoomProvisioner
	if cfg.RedisAddr != "" && cfg.VideoAPIBaseURL != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		videoClient := video.NewClient(cfg.VideoAPIBaseURL, cfg.VideoAPIKey, logger)
		rooms = video.NewProvisioner(videoClient, redisClient, cfg.VideoRoomTTL, logger)
	} else {
		logger.Warn("video rooms disabled", "redis", cfg.RedisAddr != "", "video_api", cfg.VideoAPIBaseURL != "")
	}

	var emailSender notify.EmailSender
	if cfg.NotifyEmailMuted {
		emailSender = notify.NewStubEmailSender(logger)
	} else if cfg.NotifyFromEmail != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
	}
	notifier := notify.NewService(emailSender, cfg.NotifyOpsEmail, logger)

	bookingsService := bookings.NewService(
		bookings.NewRepository(pool),
		availabilityService,
		rooms,
		notifier,
		bookingMetrics,
		logger,
	)

	var gateway payments.Gateway
	if cfg.PaymentGatewayBaseURL != "" {
		gateway = payments.NewHostedCheckoutClient(cfg.PaymentGatewayBaseURL, cfg.PaymentGatewayKey, logger)
	} else {
		logger.Warn("payment gateway not configured, using fake checkout")
		gateway = payments.NewFakeGateway(cfg.PublicBaseURL)
	}
	paymentsService := payments.NewService(payments.NewRepository(pool), gateway, "hosted", logger)

	routerCfg := &router.Config{
		Logger:              logger,
		TherapistsHandler:   therapists.NewHandler(therapists.NewRepository(pool), logger),
		AvailabilityHandler: availability.NewHandler(availabilityService, logger),
		BookingsHandler:     bookings.NewHandler(bookingsService, logger),
		PaymentsHandler:     payments.NewHandler(paymentsService, logger),
		PaymentsWebhook:     payments.NewWebhookHandler(cfg.PaymentWebhookSecret, paymentsService, logger),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
