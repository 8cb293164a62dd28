package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/telehealth-api/internal/config"
	adminHandler "github.com/jwalitptl/telehealth-api/internal/handler/admin"
	appointmentHandler "github.com/jwalitptl/telehealth-api/internal/handler/appointment"
	articleHandler "github.com/jwalitptl/telehealth-api/internal/handler/article"
	authHandler "github.com/jwalitptl/telehealth-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/telehealth-api/internal/handler/doctor"
	"github.com/jwalitptl/telehealth-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/telehealth-api/internal/handler/patient"
	promHandler "github.com/jwalitptl/telehealth-api/internal/handler/prometheus"
	videoHandler "github.com/jwalitptl/telehealth-api/internal/handler/video"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/repository/postgres"
	"github.com/jwalitptl/telehealth-api/internal/router"
	adminService "github.com/jwalitptl/telehealth-api/internal/service/admin"
	appointmentService "github.com/jwalitptl/telehealth-api/internal/service/appointment"
	articleService "github.com/jwalitptl/telehealth-api/internal/service/article"
	authService "github.com/jwalitptl/telehealth-api/internal/service/auth"
	doctorService "github.com/jwalitptl/telehealth-api/internal/service/doctor"
	"github.com/jwalitptl/telehealth-api/internal/service/document"
	eventService "github.com/jwalitptl/telehealth-api/internal/service/event"
	patientService "github.com/jwalitptl/telehealth-api/internal/service/patient"
	videoService "github.com/jwalitptl/telehealth-api/internal/service/video"
	"github.com/jwalitptl/telehealth-api/pkg/auth"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
	"github.com/jwalitptl/telehealth-api/pkg/security"
	"github.com/jwalitptl/telehealth-api/pkg/validator"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)
	validator.Register()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	location, err := time.LoadLocation(cfg.Video.Timezone)
	if err != nil {
		return fmt.Errorf("invalid video timezone: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	medicalRepo := postgres.NewMedicalRecordRepository(db)
	articleRepo := postgres.NewArticleRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry, cfg.Server.MetricsPrefix, "")
	events := eventService.NewEventService(outboxRepo)

	authSvc := authService.NewService(
		userRepo,
		auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry),
		security.NewBcryptHasher(bcrypt.DefaultCost),
		m,
	)
	doctorSvc := doctorService.NewService(doctorRepo, availabilityRepo, appointmentRepo, medicalRepo)
	patientSvc := patientService.NewService(patientRepo, appointmentRepo, medicalRepo, document.NewRenderer("Telehealth"))
	appointmentSvc := appointmentService.NewService(appointmentRepo, availabilityRepo, doctorRepo, medicalRepo, events, m)
	videoSvc := videoService.NewService(
		appointmentRepo,
		videoService.NewJWTIssuer(cfg.Video.AppID, cfg.Video.AppCertificate),
		events,
		m,
		videoService.Config{
			AppID:      cfg.Video.AppID,
			TokenTTL:   cfg.Video.TokenTTL,
			JoinWindow: cfg.Video.JoinWindow,
			Location:   location,
		},
	)
	articleSvc := articleService.NewService(articleRepo)
	adminSvc := adminService.NewService(userRepo, doctorRepo, statsRepo, events, m)

	routerConfig := router.RouterConfig{
		Timeout:        cfg.Server.Timeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CacheTTL:       cfg.Cache.PublicTTL,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = &middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Health:      health.NewHandler(db),
		Metrics:     promHandler.New(registry, cfg.Server.MetricsPrefix),
		Auth:        authHandler.NewHandler(authSvc),
		Doctor:      doctorHandler.NewHandler(doctorSvc),
		Patient:     patientHandler.NewHandler(patientSvc),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Video:       videoHandler.NewHandler(videoSvc),
		Article:     articleHandler.NewHandler(articleSvc),
		Admin:       adminHandler.NewHandler(adminSvc, articleSvc),
	}, routerConfig)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
