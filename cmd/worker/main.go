package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/config"
	"github.com/jwalitptl/telehealth-api/internal/email"
	"github.com/jwalitptl/telehealth-api/internal/handler/health"
	promHandler "github.com/jwalitptl/telehealth-api/internal/handler/prometheus"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/notify"
	"github.com/jwalitptl/telehealth-api/internal/repository/postgres"
	"github.com/jwalitptl/telehealth-api/pkg/logger"
	"github.com/jwalitptl/telehealth-api/pkg/messaging/redis"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
	"github.com/jwalitptl/telehealth-api/pkg/worker"
)

// Config is read from WORKER_* environment variables, except for the
// provider credentials which keep their usual names.
type Config struct {
	HealthPort int    `envconfig:"HEALTH_PORT" default:"8081"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`

	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         int    `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" default:"postgres"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME" default:"telehealth"`
	DBSSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"5"`

	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	RetryAttempts int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"1s"`
	MaxRetries    int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5"`
	Retention     time.Duration `envconfig:"OUTBOX_RETENTION" default:"168h"`
	CleanupEvery  time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"1h"`

	Redis  redis.Config        `ignored:"true"`
	SMTP   email.Config        `ignored:"true"`
	Twilio notify.TwilioConfig `ignored:"true"`
}

func (c Config) database() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:         c.DBHost,
		Port:         c.DBPort,
		User:         c.DBUser,
		Password:     c.DBPassword,
		Name:         c.DBName,
		SSLMode:      c.DBSSLMode,
		MaxOpenConns: c.DBMaxOpenConns,
		MaxIdleConns: c.DBMaxOpenConns,
	}
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("worker", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load worker config: %w", err)
	}
	// Provider settings are shared with other tooling and carry no prefix.
	if err := envconfig.Process("", &cfg.Redis); err != nil {
		return cfg, err
	}
	if err := envconfig.Process("", &cfg.SMTP); err != nil {
		return cfg, err
	}
	if err := envconfig.Process("", &cfg.Twilio); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}

func run(cfg Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.NewDB(cfg.database())
	if err != nil {
		return err
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(ctx, cfg.Redis, log.Logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry, "telehealth", "worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.BatchSize,
		PollInterval:  cfg.PollInterval,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		MaxRetries:    cfg.MaxRetries,
	}, m)
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Retention, cfg.CleanupEvery, m)

	var mailer email.Service = email.LogService{}
	if cfg.SMTP.Enabled() {
		mailer = email.NewSMTPService(cfg.SMTP)
	}
	var sms notify.SMSSender
	if cfg.Twilio.Enabled() {
		sms = notify.NewTwilioSender(cfg.Twilio)
	}
	notifier := notify.NewNotifier(postgres.NewUserRepository(db), mailer, sms, m)

	srv := healthServer(cfg.HealthPort, db, registry)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := broker.Subscribe(ctx, notifier.Handle, model.NotificationEvents...); err != nil {
			log.Error().Err(err).Msg("notification subscriber stopped")
			cancel()
		}
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health check server failed")
			cancel()
		}
	}()

	log.Info().
		Strs("channels", model.NotificationEvents).
		Bool("smtp", cfg.SMTP.Enabled()).
		Bool("sms", cfg.Twilio.Enabled()).
		Msg("worker started")

	<-ctx.Done()
	log.Info().Msg("shutting down worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	wg.Wait()
	return nil
}

func healthServer(port int, db health.Pinger, registry *prometheus.Registry) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	health.NewHandler(db).RegisterRoutes(engine)
	engine.GET("/metrics", promHandler.New(registry, "telehealth_worker").Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
