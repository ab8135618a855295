package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/studio_backend/config"
)

func TestNewRedis(t *testing.T) {
	server := miniredis.RunT(t)

	rdb, err := NewRedisFromCentral(context.Background(), config.RedisConfig{Addr: server.Addr(), DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	server.Select(2)
	got, err := server.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedis_Errors(t *testing.T) {
	_, err := NewRedis(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoAddr)

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err = NewRedis(context.Background(), FromCentralConfig(config.RedisConfig{Addr: addr, DialTimeoutSeconds: 1}))
	assert.Error(t, err)
}

func TestFromCentralConfig_Defaults(t *testing.T) {
	c := FromCentralConfig(config.RedisConfig{Addr: "cache:6379", PoolSize: 20})
	assert.Equal(t, 20, c.PoolSize)
	assert.Equal(t, DefaultConfig().MinIdleConns, c.MinIdleConns)
	assert.Equal(t, DefaultConfig().DialTimeout(), c.DialTimeout())
}
