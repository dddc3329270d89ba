package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRedis(t *testing.T) {
	assert.Nil(t, WrapRedis(nil))

	err := WrapRedis(redis.Nil)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.True(t, errors.Is(err, redis.Nil))

	err = WrapRedis(errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Equal(t, RedisErrorMessage, MessageOf(err))
}

func TestUpstream(t *testing.T) {
	err := Upstream("legal-api", http.StatusInternalServerError, "boom")
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))

	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusInternalServerError, up.Status)
	assert.Contains(t, err.Error(), "legal-api returned status 500: boom")

	wrapped := fmt.Errorf("fetch summary: %w", err)
	assert.True(t, errors.Is(wrapped, ErrUpstream))
}

func TestWrapTransport(t *testing.T) {
	assert.Nil(t, WrapTransport("backend", nil))

	cause := errors.New("dial tcp: timeout")
	err := WrapTransport("backend", cause)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, UpstreamErrorMessage, MessageOf(err))
}

func TestStatusOfPlainError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, SystemErrorMessage, MessageOf(err))
}
