package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler/admin"
	"github.com/jwalitptl/telehealth-api/internal/handler/appointment"
	"github.com/jwalitptl/telehealth-api/internal/handler/article"
	"github.com/jwalitptl/telehealth-api/internal/handler/auth"
	"github.com/jwalitptl/telehealth-api/internal/handler/doctor"
	"github.com/jwalitptl/telehealth-api/internal/handler/health"
	"github.com/jwalitptl/telehealth-api/internal/handler/patient"
	"github.com/jwalitptl/telehealth-api/internal/handler/prometheus"
	"github.com/jwalitptl/telehealth-api/internal/handler/video"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health      *health.Handler
	Metrics     *prometheus.Handler
	Auth        *auth.Handler
	Doctor      *doctor.Handler
	Patient     *patient.Handler
	Appointment *appointment.Handler
	Video       *video.Handler
	Article     *article.Handler
	Admin       *admin.Handler
}

type RouterConfig struct {
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
	// RateLimit is nil when per-client limiting is off.
	RateLimit *middleware.RateLimiterConfig
	CacheTTL  time.Duration
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	cache    *middleware.ResponseCache
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()

	if config.CacheTTL <= 0 {
		config.CacheTTL = 30 * time.Second
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = middleware.DefaultMaxBodyBytes
	}

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		cache:    middleware.NewResponseCache(config.CacheTTL),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		handlers.Metrics.Middleware(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.AllowedOrigins),
		middleware.SizeLimit(config.MaxBodyBytes),
	)
	if config.Timeout > 0 {
		engine.Use(middleware.Timeout(config.Timeout))
	}
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	engine.NoRoute(middleware.NoRoute())
	return r
}

func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.handlers.Metrics.Handler())

	api := r.engine.Group("/api")
	api.Use(r.cache.Invalidate())

	authenticate := r.auth.Authenticate()
	cache := r.cache.Cache()

	r.handlers.Auth.RegisterRoutes(api, authenticate)
	r.handlers.Doctor.RegisterRoutes(api, authenticate, cache)
	r.handlers.Patient.RegisterRoutes(api, authenticate)
	r.handlers.Appointment.RegisterRoutes(api, authenticate)
	r.handlers.Video.RegisterRoutes(api, authenticate)
	r.handlers.Article.RegisterRoutes(api, cache)
	r.handlers.Admin.RegisterRoutes(api, authenticate)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
