package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "smtp", MaxFailures: 2, Timeout: time.Minute})

	assert.Equal(t, "smtp", cb.Name())
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, "closed", cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 2, Timeout: time.Minute})

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.NoError(t, cb.Execute(succeed))
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, "closed", cb.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 1, Timeout: 20 * time.Millisecond})

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, "open", cb.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "half-open", cb.State())
	assert.NoError(t, cb.Execute(succeed))
	assert.Equal(t, "closed", cb.State())
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 1, Timeout: 20 * time.Millisecond})

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	time.Sleep(40 * time.Millisecond)
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, "open", cb.State())
}
