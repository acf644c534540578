package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener/internal/platform/config"
)

func TestNewWithoutURLSelectsInProcessStore(t *testing.T) {
	c, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "not-a-redis-url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestNewDoesNotRequireAReachableServer(t *testing.T) {
	c, err := New(config.RedisConfig{URL: "redis://127.0.0.1:1/0", DialTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()

	err = c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestApplyPoolKeepsDefaultsForZeroValues(t *testing.T) {
	opts := &redis.Options{PoolSize: 10, ReadTimeout: time.Second}
	applyPool(opts, config.RedisConfig{MinIdleConns: 2, WriteTimeout: 250 * time.Millisecond})

	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.WriteTimeout)
}
