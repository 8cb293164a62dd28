package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	adminHandler "github.com/jwalitptl/telehealth-api/internal/handler/admin"
	appointmentHandler "github.com/jwalitptl/telehealth-api/internal/handler/appointment"
	articleHandler "github.com/jwalitptl/telehealth-api/internal/handler/article"
	authHandler "github.com/jwalitptl/telehealth-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/telehealth-api/internal/handler/doctor"
	"github.com/jwalitptl/telehealth-api/internal/handler/handlertest"
	"github.com/jwalitptl/telehealth-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/telehealth-api/internal/handler/patient"
	"github.com/jwalitptl/telehealth-api/internal/handler/prometheus"
	videoHandler "github.com/jwalitptl/telehealth-api/internal/handler/video"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	"github.com/jwalitptl/telehealth-api/internal/service/admin"
	"github.com/jwalitptl/telehealth-api/internal/service/appointment"
	"github.com/jwalitptl/telehealth-api/internal/service/article"
	"github.com/jwalitptl/telehealth-api/internal/service/auth"
	"github.com/jwalitptl/telehealth-api/internal/service/doctor"
	"github.com/jwalitptl/telehealth-api/internal/service/document"
	"github.com/jwalitptl/telehealth-api/internal/service/event"
	"github.com/jwalitptl/telehealth-api/internal/service/patient"
	"github.com/jwalitptl/telehealth-api/internal/service/video"
	tokens "github.com/jwalitptl/telehealth-api/pkg/auth"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
	"github.com/jwalitptl/telehealth-api/pkg/security"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type app struct {
	engine *gin.Engine
	store  *memory.Store
	jwt    tokens.JWTService
}

func newApp(t *testing.T) *app {
	t.Helper()
	store := memory.NewStore()
	reg := prom.NewRegistry()
	m := metrics.NewMetrics(reg, "test", "")
	events := event.NewEventService(store.Outbox())
	jwt := tokens.NewJWTService("test-secret", "telehealth-test", time.Hour)

	authSvc := auth.NewService(store.Users(), jwt, security.NewBcryptHasher(bcrypt.MinCost), m)
	articleSvc := article.NewService(store.Articles())

	r := NewRouter(middleware.NewAuthMiddleware(authSvc), Handlers{
		Health:  health.NewHandler(okPinger{}),
		Metrics: prometheus.New(reg, "test"),
		Auth:    authHandler.NewHandler(authSvc),
		Doctor: doctorHandler.NewHandler(doctor.NewService(
			store.Doctors(), store.Availability(), store.Appointments(), store.MedicalRecords())),
		Patient: patientHandler.NewHandler(patient.NewService(
			store.Patients(), store.Appointments(), store.MedicalRecords(), document.NewRenderer("Telehealth"))),
		Appointment: appointmentHandler.NewHandler(appointment.NewService(
			store.Appointments(), store.Availability(), store.Doctors(), store.MedicalRecords(), events, m)),
		Video: videoHandler.NewHandler(video.NewService(
			store.Appointments(), video.NewJWTIssuer("app", "cert"), events, m,
			video.Config{AppID: "app", TokenTTL: time.Hour, JoinWindow: 15 * time.Minute, Location: time.UTC})),
		Article: articleHandler.NewHandler(articleSvc),
		Admin: adminHandler.NewHandler(
			admin.NewService(store.Users(), store.Doctors(), store.Stats(), events, m), articleSvc),
	}, RouterConfig{
		Timeout:        5 * time.Second,
		AllowedOrigins: []string{"*"},
		CacheTTL:       time.Minute,
	})
	r.Setup()

	return &app{engine: r.Engine(), store: store, jwt: jwt}
}

func (a *app) do(t *testing.T, user *model.User, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if user != nil {
		token, _, err := a.jwt.GenerateToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)

	w := a.do(t, nil, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	w = a.do(t, nil, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, nil, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	a := newApp(t)

	w := a.do(t, nil, http.MethodGet, "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", handlertest.Decode(t, w, nil).Message)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)

	w := a.do(t, nil, http.MethodGet, "/api/patients/profile")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", handlertest.Decode(t, w, nil).Message)

	patient := a.store.AddUser(model.RolePatient, "pat@example.com", true)
	w = a.do(t, patient, http.MethodGet, "/api/patients/profile")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, patient, http.MethodGet, "/api/admin/stats")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDirectoryCacheFlushedByWrites(t *testing.T) {
	a := newApp(t)
	adminUser := a.store.AddUser(model.RoleAdmin, "admin@example.com", true)
	a.store.AddUser(model.RoleDoctor, "approved@example.com", true)
	pending := a.store.AddUser(model.RoleDoctor, "pending@example.com", false)

	w := a.do(t, nil, http.MethodGet, "/api/doctors")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(middleware.HeaderXCache))

	w = a.do(t, nil, http.MethodGet, "/api/doctors")
	assert.Equal(t, "HIT", w.Header().Get(middleware.HeaderXCache))
	var doctors []model.Doctor
	handlertest.Decode(t, w, &doctors)
	assert.Len(t, doctors, 1)

	w = a.do(t, adminUser, http.MethodPost, "/api/admin/doctors/"+pending.ID.String()+"/approve")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, nil, http.MethodGet, "/api/doctors")
	assert.Equal(t, "MISS", w.Header().Get(middleware.HeaderXCache))
	handlertest.Decode(t, w, &doctors)
	assert.Len(t, doctors, 2)
}
