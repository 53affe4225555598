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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/funnelkit/lead-capture-api/internal/api/router"
	"github.com/funnelkit/lead-capture-api/internal/automation"
	appconfig "github.com/funnelkit/lead-capture-api/internal/config"
	"github.com/funnelkit/lead-capture-api/internal/crm"
	"github.com/funnelkit/lead-capture-api/internal/events"
	"github.com/funnelkit/lead-capture-api/internal/funnel"
	"github.com/funnelkit/lead-capture-api/internal/leads"
	"github.com/funnelkit/lead-capture-api/internal/notify"
	"github.com/funnelkit/lead-capture-api/internal/observability/metrics"
	"github.com/funnelkit/lead-capture-api/pkg/logging"
)

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting lead-capture-api server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Storage: Postgres when configured, in-memory otherwise. The pool is
	// opened once here and injected into everything that needs it.
	var pool *pgxpool.Pool
	var leadsRepo leads.Repository
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadsRepo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory lead store")
		leadsRepo = leads.NewInMemoryRepository()
	}

	redisClient := buildRedisClient(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	funnelStore := funnel.NewStore(redisClient, cfg.DefaultFunnelWindow)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	leadMetrics := metrics.NewLeadMetrics(registry)

	leadsHandler := leads.NewHandler(leadsRepo, logger).WithMetrics(leadMetrics)

	// Automation webhook feeds off the outbox; both need Postgres.
	if pool != nil && cfg.AutomationWebhookURL != "" {
		webhookClient, err := automation.NewWebhookClient(automation.Config{
			URL:    cfg.AutomationWebhookURL,
			Secret: cfg.AutomationWebhookSecret,
			Logger: logger,
		})
		if err != nil {
			logger.Error("failed to build webhook client", "error", err)
			os.Exit(1)
		}
		outboxStore := events.NewOutboxStore(pool)
		leadsHandler.WithEventRecorder(events.NewLeadRecorder(outboxStore))

		deliverer := events.NewDeliverer(outboxStore, webhookClient, logger).
			WithInterval(cfg.OutboxPollInterval).
			WithBatchSize(int32(cfg.OutboxBatchSize)).
			WithMetrics(leadMetrics)
		go deliverer.Start(ctx)
		logger.Info("automation webhook delivery enabled")
	}

	if cfg.CRMSubscribeURL != "" && cfg.CRMAPIKey != "" {
		crmClient, err := crm.NewClient(crm.Config{
			SubscribeURL: cfg.CRMSubscribeURL,
			APIKey:       cfg.CRMAPIKey,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to build crm client", "error", err)
			os.Exit(1)
		}
		leadsHandler.WithSubscriber(crmClient)
		logger.Info("crm subscribe enabled")
	}

	if notifier := buildNotifier(ctx, cfg, logger); notifier != nil {
		leadsHandler.WithNotifier(notifier)
		logger.Info("lead notifications enabled", "recipients", len(cfg.NotifyRecipients))
	}

	funnelHandler := funnel.NewHandler(leadsRepo, funnelStore, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		FunnelHandler:      funnelHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CaptureRateLimit:   cfg.CaptureRateLimit,
		CaptureRateBurst:   cfg.CaptureRateBurst,
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
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildRedisClient returns a verified Redis client or nil when disabled or
// unreachable.
func buildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, campaign windows fall back to default", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// buildNotifier wires the configured email provider, or nil when disabled.
func buildNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *notify.Service {
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			sender = s
		}
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
			return nil
		}
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); s != nil {
			sender = s
		}
	}
	return notify.NewService(sender, cfg.NotifyRecipients, logger)
}
