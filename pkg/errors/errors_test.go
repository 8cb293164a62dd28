package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
		slug string
	}{
		{NotFound("Appointment not found"), http.StatusNotFound, "not_found"},
		{BadRequest("bad"), http.StatusBadRequest, "bad_request"},
		{Unauthorized("no token"), http.StatusUnauthorized, "unauthorized"},
		{Forbidden("Access denied"), http.StatusForbidden, "forbidden"},
		{PendingApproval("pending"), http.StatusForbidden, "pending_approval"},
		{Conflict("This slot is already booked"), http.StatusConflict, "conflict"},
		{Internal(errors.New("boom")), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
			assert.Equal(t, tt.slug, tt.err.Slug())
		})
	}
}

func TestSentinelMatchingThroughWrap(t *testing.T) {
	sentinel := Conflict("Appointment slot conflict")
	wrapped := fmt.Errorf("booking: %w", sentinel.Wrap(errors.New("pq: duplicate key")))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, Conflict("This slot is already booked"))

	appErr := As(wrapped)
	assert.Equal(t, ErrConflict, appErr.Code)
}

func TestAsFallsBackToInternal(t *testing.T) {
	appErr := As(errors.New("connection reset"))
	assert.Equal(t, ErrInternal, appErr.Code)
	assert.Equal(t, "Internal server error", appErr.Message)
}
