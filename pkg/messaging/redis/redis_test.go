package redis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "http://not-redis"}, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
