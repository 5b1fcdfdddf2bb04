package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/padel-board-api/pkg/config"
)

func TestOptionsUsesConfig(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache", Port: 6380, Password: "secret", DB: 2}, time.Second)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)
}

func TestOptionsDefaultsTimeout(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "localhost", Port: 6379}, 0)
	assert.Equal(t, defaultTimeout, opts.DialTimeout)
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1}, 50*time.Millisecond)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
