package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/studio_backend/config"
)

// NewGlobalLimiter caps overall request rate per client with a sliding window. Counters live in
// Redis when a client is given and in process memory otherwise.
func NewGlobalLimiter(cfg config.GlobalLimitConfig, rdb *redis.Client) fiber.Handler {
	max := cfg.Max
	if max <= 0 {
		max = 60
	}
	exp := time.Duration(cfg.ExpirationSeconds) * time.Second
	if exp <= 0 {
		exp = time.Minute
	}

	lc := limiter.Config{
		Max:               max,
		Expiration:        exp,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      ClientIP,
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}
	if rdb != nil {
		lc.Storage = fiberredis.NewFromConnection(rdb)
	}
	return limiter.New(lc)
}
