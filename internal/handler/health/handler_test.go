package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	h := NewHandler(fakePinger{})
	h.now = func() time.Time { return time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC) }

	w := serve(h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"timestamp":"2030-03-04T10:00:00Z"`)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReadiness(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(NewHandler(fakePinger{}), "/health/ready").Code)

	w := serve(NewHandler(fakePinger{err: errors.New("refused")}), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}
