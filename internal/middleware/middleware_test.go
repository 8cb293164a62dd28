package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/model"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	users map[string]*model.User
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, apperrors.Unauthorized("Invalid or expired token")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func user(role model.Role, approved bool) *model.User {
	u := &model.User{Role: role, IsApproved: approved, IsActive: true}
	u.ID = uuid.New()
	return u
}

func protectedRouter(auth Authenticator, roles ...model.Role) *gin.Engine {
	r := gin.New()
	m := NewAuthMiddleware(auth)
	r.GET("/protected", m.Authenticate(), RequireRoles(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.CurrentUser(c).Role))
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	auth := &fakeAuthenticator{users: map[string]*model.User{
		"patient":         user(model.RolePatient, true),
		"doctor":          user(model.RoleDoctor, true),
		"pending-doctor":  user(model.RoleDoctor, false),
		"admin-principal": user(model.RoleAdmin, true),
	}}

	tests := []struct {
		name   string
		header string
		roles  []model.Role
		status int
		code   string
	}{
		{"missing header", "", []model.Role{model.RolePatient}, http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "Basic patient", []model.Role{model.RolePatient}, http.StatusUnauthorized, "unauthorized"},
		{"empty token", "Bearer ", []model.Role{model.RolePatient}, http.StatusUnauthorized, "unauthorized"},
		{"unknown token", "Bearer nope", []model.Role{model.RolePatient}, http.StatusUnauthorized, "unauthorized"},
		{"role allowed", "Bearer patient", []model.Role{model.RolePatient}, http.StatusOK, ""},
		{"lowercase scheme", "bearer patient", []model.Role{model.RolePatient}, http.StatusOK, ""},
		{"role denied", "Bearer patient", []model.Role{model.RoleAdmin}, http.StatusForbidden, "forbidden"},
		{"approved doctor", "Bearer doctor", []model.Role{model.RoleDoctor}, http.StatusOK, ""},
		{"pending doctor", "Bearer pending-doctor", []model.Role{model.RoleDoctor}, http.StatusForbidden, "pending_approval"},
		{"pending doctor on shared route", "Bearer pending-doctor", []model.Role{model.RolePatient, model.RoleDoctor}, http.StatusForbidden, "pending_approval"},
		{"admin", "Bearer admin-principal", []model.Role{model.RoleAdmin}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(auth, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			if tt.code != "" {
				assert.Equal(t, "error", resp.Status)
				assert.Equal(t, tt.code, resp.Code)
			} else {
				assert.Equal(t, "success", resp.Status)
			}
		})
	}
}

func TestAuthenticateDeactivated(t *testing.T) {
	r := protectedRouter(&fakeAuthenticator{err: apperrors.Forbidden("Account is deactivated")}, model.RolePatient)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer any")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account is deactivated", decode(t, w).Message)
}

func TestAuthenticateHidesInternalErrors(t *testing.T) {
	r := protectedRouter(&fakeAuthenticator{err: errors.New("connection reset by peer")}, model.RolePatient)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer any")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Message)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(handler.ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", decode(t, w).Code)
}

func TestErrorHandlerRendersAttachedError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) { _ = c.Error(apperrors.Conflict("Slot already exists")) })
	r.NoRoute(NoRoute())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Slot already exists", decode(t, w).Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode(t, w).Message)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/doctors", rc.Cache(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, handler.NewSuccessResponse(calls))
	})
	r.GET("/missing", rc.Cache(), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("not_found", "nope"))
	})
	r.POST("/write", rc.Invalidate(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/rejected", rc.Invalidate(), func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/doctors")
	assert.Equal(t, "MISS", first.Header().Get(HeaderXCache))
	second := get("/doctors")
	assert.Equal(t, "HIT", second.Header().Get(HeaderXCache))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)

	get("/doctors?specialization=Cardiology")
	assert.Equal(t, 2, calls)

	get("/missing")
	assert.Equal(t, 2, rc.Len())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rejected", nil))
	assert.Equal(t, 2, rc.Len())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/write", nil))
	assert.Equal(t, 0, rc.Len())
	assert.Equal(t, "MISS", get("/doctors").Header().Get(HeaderXCache))
	assert.Equal(t, 3, calls)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(16))
	r.POST("/", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
