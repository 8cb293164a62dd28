package admin

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/handler/handlertest"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	"github.com/jwalitptl/telehealth-api/internal/service/admin"
	"github.com/jwalitptl/telehealth-api/internal/service/article"
	"github.com/jwalitptl/telehealth-api/internal/service/event"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

type fixture struct {
	store *memory.Store
	h     *Handler
	admin *model.User
}

func newFixture() *fixture {
	store := memory.NewStore()
	svc := admin.NewService(store.Users(), store.Doctors(), store.Stats(),
		event.NewEventService(store.Outbox()), metrics.NewMetrics(prometheus.NewRegistry(), "test", ""))
	return &fixture{
		store: store,
		h:     NewHandler(svc, article.NewService(store.Articles())),
		admin: store.AddUser(model.RoleAdmin, "admin@example.com", true),
	}
}

func (f *fixture) as(user *model.User) *gin.Engine {
	r := handlertest.Router(user)
	f.h.RegisterRoutes(r.Group("/api"), func(c *gin.Context) { c.Next() })
	return r
}

func TestAdminOnly(t *testing.T) {
	f := newFixture()
	patient := f.store.AddUser(model.RolePatient, "pat@example.com", true)

	w := handlertest.Do(f.as(patient), http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", handlertest.Decode(t, w, nil).Message)
}

func TestApproveDoctor(t *testing.T) {
	f := newFixture()
	pending := f.store.AddUser(model.RoleDoctor, "doc@example.com", false)
	r := f.as(f.admin)

	w := handlertest.Do(r, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.PlatformStats
	handlertest.Decode(t, w, &stats)
	assert.EqualValues(t, 1, stats.PendingDoctors)

	w = handlertest.Do(r, http.MethodGet, "/api/admin/doctors/pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doctors []model.Doctor
	handlertest.Decode(t, w, &doctors)
	require.Len(t, doctors, 1)
	assert.Equal(t, pending.ID, doctors[0].ID)

	w = handlertest.Do(r, http.MethodPost, "/api/admin/doctors/"+pending.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user model.User
	env := handlertest.Decode(t, w, &user)
	assert.Equal(t, "Doctor approved successfully", env.Message)
	assert.True(t, user.IsApproved)

	events := f.store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventDoctorApproved, events[0].EventType)

	w = handlertest.Do(r, http.MethodPost, "/api/admin/doctors/"+f.admin.ID.String()+"/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Doctor not found", handlertest.Decode(t, w, nil).Message)
}

func TestActivation(t *testing.T) {
	f := newFixture()
	patient := f.store.AddUser(model.RolePatient, "pat@example.com", true)
	r := f.as(f.admin)

	w := handlertest.Do(r, http.MethodPost, "/api/admin/users/"+patient.ID.String()+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user model.User
	env := handlertest.Decode(t, w, &user)
	assert.Equal(t, "User deactivated successfully", env.Message)
	assert.False(t, user.IsActive)

	w = handlertest.Do(r, http.MethodPost, "/api/admin/users/"+patient.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = handlertest.Decode(t, w, &user)
	assert.Equal(t, "User activated successfully", env.Message)
	assert.True(t, user.IsActive)

	w = handlertest.Do(r, http.MethodPost, "/api/admin/users/nope/activate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid user ID", handlertest.Decode(t, w, nil).Message)
}

func TestListUsersByRole(t *testing.T) {
	f := newFixture()
	f.store.AddUser(model.RolePatient, "pat@example.com", true)
	f.store.AddUser(model.RoleDoctor, "doc@example.com", true)
	r := f.as(f.admin)

	w := handlertest.Do(r, http.MethodGet, "/api/admin/users?role=doctor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	handlertest.Decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleDoctor, users[0].Role)

	w = handlertest.Do(r, http.MethodGet, "/api/admin/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	handlertest.Decode(t, w, &users)
	assert.Len(t, users, 3)

	w = handlertest.Do(r, http.MethodGet, "/api/admin/users?role=nurse", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticleCRUD(t *testing.T) {
	f := newFixture()
	r := f.as(f.admin)

	w := handlertest.Do(r, http.MethodPost, "/api/admin/health-articles", map[string]interface{}{
		"title":    "Staying hydrated",
		"content":  "Drink water.",
		"category": "wellness",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var a model.HealthArticle
	env := handlertest.Decode(t, w, &a)
	assert.Equal(t, "Health article created successfully", env.Message)
	assert.False(t, a.IsPublished)
	require.NotNil(t, a.AuthorID)
	assert.Equal(t, f.admin.ID, *a.AuthorID)

	w = handlertest.Do(r, http.MethodPost, "/api/admin/health-articles", map[string]string{"title": "No body"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(r, http.MethodPut, "/api/admin/health-articles/"+a.ID.String(), map[string]bool{"is_published": true})
	require.Equal(t, http.StatusOK, w.Code)
	env = handlertest.Decode(t, w, &a)
	assert.Equal(t, "Health article updated successfully", env.Message)
	assert.True(t, a.IsPublished)

	w = handlertest.Do(r, http.MethodGet, "/api/admin/health-articles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []model.HealthArticle
	handlertest.Decode(t, w, &all)
	assert.Len(t, all, 1)

	w = handlertest.Do(r, http.MethodDelete, "/api/admin/health-articles/"+a.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Health article deleted successfully", handlertest.Decode(t, w, nil).Message)

	w = handlertest.Do(r, http.MethodDelete, "/api/admin/health-articles/"+a.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Article not found", handlertest.Decode(t, w, nil).Message)
}
