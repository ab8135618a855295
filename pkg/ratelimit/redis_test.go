package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

func TestRedis_Check(t *testing.T) {
	_, client := newTestRedis(t)

	now := time.Date(2024, time.June, 23, 10, 15, 30, 0, time.Local)
	limiter := NewRedis(client, "test", func() time.Time { return now })
	ctx := context.Background()

	tt := []struct {
		desc      string
		allowed   bool
		remaining int
	}{
		{desc: "first request opens the window", allowed: true, remaining: 2},
		{desc: "second request", allowed: true, remaining: 1},
		{desc: "third request reaches the max", allowed: true, remaining: 0},
		{desc: "fourth request is denied", allowed: false, remaining: 0},
		{desc: "fifth request is denied", allowed: false, remaining: 0},
	}

	wantReset := now.Add(time.Minute)
	for _, ts := range tt {
		d, err := limiter.Check(ctx, "203.0.113.7", time.Minute, 3)
		require.NoError(t, err, ts.desc)
		assert.Equal(t, ts.allowed, d.Allowed, ts.desc)
		assert.Equal(t, ts.remaining, d.Remaining, ts.desc)
		assert.True(t, wantReset.Equal(d.ResetTime), ts.desc)
		now = now.Add(time.Second)
	}
}

func TestRedis_WindowReset(t *testing.T) {
	_, client := newTestRedis(t)

	now := time.Date(2024, time.June, 23, 10, 0, 0, 0, time.Local)
	limiter := NewRedis(client, "", func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Check(ctx, "ip", time.Minute, 2)
		require.NoError(t, err)
	}

	now = now.Add(time.Minute)

	d, err := limiter.Check(ctx, "ip", time.Minute, 2)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.True(t, now.Add(time.Minute).Equal(d.ResetTime))
}

func TestRedis_KeyExpires(t *testing.T) {
	server, client := newTestRedis(t)

	limiter := NewRedis(client, "test", nil)
	_, err := limiter.Check(context.Background(), "ip", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, server.Exists("test:ip"))

	server.FastForward(time.Minute + time.Second)
	assert.False(t, server.Exists("test:ip"))
}

func TestRedis_InvalidLimit(t *testing.T) {
	_, client := newTestRedis(t)

	limiter := NewRedis(client, "test", nil)
	_, err := limiter.Check(context.Background(), "ip", time.Minute, -1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}
