package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/config"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/consumer"
	httphandler "github.com/nhsengland/innovation-service-backend-api-sub008/internal/handler/http"
	wshandler "github.com/nhsengland/innovation-service-backend-api-sub008/internal/handler/ws"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/handlers"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/matcher"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/queue"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/registry"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/repository"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/router"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/scheduler"
	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/service"
	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/notifier/ws"
	"github.com/nhsengland/innovation-service-backend-api-sub008/pkg/template"
)

// Run wires the notification engine and blocks until the context is
// cancelled: four topic consumers, the scheduled sweep, and the HTTP/WS
// surface all share one lifecycle.
func Run(ctx context.Context, cfg config.AppConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("🚀 Starting Notification Engine",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
	)

	// The event table is closed: a missing builder is a deploy-time bug,
	// not a runtime condition, so refuse to start.
	if err := registry.SelfCheck(); err != nil {
		return fmt.Errorf("event registry self-check: %w", err)
	}
	logger.Info("✅ Event registry verified", zap.Int("event_types", len(registry.EventTypes())))

	// --- DB connection ---
	dbpool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	if err := dbpool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("✅ Database connected",
		zap.Int32("max_conns", dbpool.Config().MaxConns),
	)

	// --- Redis client (preference cache; degraded mode without it) ---
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPass,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("⚠️ Redis connection failed, preference caching disabled", zap.Error(err))
		rdb = nil
	} else {
		logger.Info("✅ Redis connected", zap.String("addr", cfg.RedisAddr))
	}

	// --- Repositories ---
	recipientsRepo := repository.NewRecipientsRepository(dbpool)
	subscriptionRepo := repository.NewSubscriptionRepository(dbpool)
	inAppRepo := repository.NewInAppRepository(dbpool)
	preferenceRepo := repository.NewPreferenceRepository(dbpool, rdb, logger)
	logger.Info("✅ Repositories initialized")

	deps := handlers.Deps{
		Recipients:  recipientsRepo,
		Identity:    recipientsRepo,
		Preferences: preferenceRepo,
	}

	// --- Kafka writers (outbound topics) ---
	emailWriter := queue.NewWriter(cfg.KafkaBrokers, cfg.EmailTopic, logger)
	defer emailWriter.Close()
	inAppWriter := queue.NewWriter(cfg.KafkaBrokers, cfg.InAppTopic, logger)
	defer inAppWriter.Close()
	producer := queue.NewProducer(emailWriter, inAppWriter, logger)
	logger.Info("✅ Kafka writers initialized",
		zap.String("email_topic", cfg.EmailTopic),
		zap.String("in_app_topic", cfg.InAppTopic),
	)

	// --- WebSocket hub ---
	hub := ws.NewManager(logger)
	go hub.Heartbeat(30 * time.Second)

	// --- Delivery backend ---
	mailer := service.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	templates := template.NewTemplateService(cfg.EmailTemplatesPath)

	// --- Processors ---
	eventProc := consumer.NewEventProcessor(deps, producer, logger)
	notifyMeProc := consumer.NewNotifyMeProcessor(
		matcher.New(subscriptionRepo, deps, producer, logger), logger)
	emailProc := consumer.NewEmailProcessor(recipientsRepo, mailer, templates, logger)
	inAppProc := consumer.NewInAppProcessor(inAppRepo, hub, logger)

	// --- Consumers (one reader per topic, shared group) ---
	consumers := []*queue.Consumer{
		queue.NewConsumer("events",
			queue.NewReader(cfg.KafkaBrokers, cfg.EventTopic, cfg.ConsumerGroup),
			eventProc.Process, logger),
		queue.NewConsumer("notify-me",
			queue.NewReader(cfg.KafkaBrokers, cfg.NotifyMeTopic, cfg.ConsumerGroup),
			notifyMeProc.Process, logger),
		queue.NewConsumer("email",
			queue.NewReader(cfg.KafkaBrokers, cfg.EmailTopic, cfg.ConsumerGroup),
			emailProc.Process, logger),
		queue.NewConsumer("in-app",
			queue.NewReader(cfg.KafkaBrokers, cfg.InAppTopic, cfg.ConsumerGroup),
			inAppProc.Process, logger),
	}
	for _, c := range consumers {
		defer c.Close()
		go c.Run(ctx)
	}
	logger.Info("✅ Consumers started", zap.Int("count", len(consumers)))

	// --- Scheduled notification sweep ---
	sweep := scheduler.NewSweepWorker(subscriptionRepo, deps, producer, logger,
		cfg.SweepInterval, cfg.GraceWindow)
	go sweep.Start(ctx)
	defer sweep.Stop()
	logger.Info("✅ Sweep worker started",
		zap.Duration("interval", cfg.SweepInterval),
		zap.Duration("grace_window", cfg.GraceWindow),
	)

	// --- HTTP surface ---
	restHandler := httphandler.NewNotifyMeHandler(subscriptionRepo, inAppRepo, preferenceRepo)
	wsHandler := wshandler.NewWSHandler(hub, logger)

	r := chi.NewRouter()
	router.SetupRoutes(r, restHandler, wsHandler)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down notification engine")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", zap.Error(err))
		}
		return nil
	}
}
