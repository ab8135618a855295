package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript applies the same algorithm as Memory atomically on a hash {count, reset}.
// reset is stored as unix milliseconds supplied by the caller so all instances agree on window edges.
// The key TTL only garbage-collects idle identifiers.
var fixedWindowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

local reset = tonumber(redis.call('HGET', KEYS[1], 'reset') or '0')
if reset == 0 or now >= reset then
	reset = now + window
	redis.call('HSET', KEYS[1], 'count', 1, 'reset', reset)
	redis.call('PEXPIRE', KEYS[1], window)
	return {1, reset, 1}
end

local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
if count < max then
	count = redis.call('HINCRBY', KEYS[1], 'count', 1)
	return {count, reset, 1}
end

return {count, reset, 0}
`)

// Redis is a Limiter whose counters live in Redis, shared by every instance of the service.
type Redis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedis(client *redis.Client, prefix string, now func() time.Time) *Redis {
	if prefix == "" {
		prefix = "ratelimit"
	}
	if now == nil {
		now = time.Now
	}
	return &Redis{client: client, prefix: prefix, now: now}
}

func (r *Redis) Check(ctx context.Context, identifier string, window time.Duration, max int) (Decision, error) {
	if err := validate(window, max); err != nil {
		return Decision{}, err
	}

	key := r.prefix + ":" + identifier
	res, err := fixedWindowScript.Run(ctx, r.client, []string{key},
		r.now().UnixMilli(), window.Milliseconds(), max,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("error executing rate limit script for key %v: %w", key, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script reply for key %v: %v", key, res)
	}

	count, reset, allowed := int(res[0]), time.UnixMilli(res[1]), res[2] == 1

	d := Decision{Allowed: allowed, Limit: max, ResetTime: reset}
	if allowed {
		d.Remaining = max - count
	}
	return d, nil
}
