package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/pkg/reqctx"
)

func TestClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error { return c.SendString(ClientIP(c)) })

	tt := []struct {
		desc    string
		headers map[string]string
		want    string
	}{
		{desc: "none", want: FallbackIP},
		{desc: "forwarded first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, want: "203.0.113.7"},
		{desc: "forwarded wins over real ip", headers: map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.2"}, want: "203.0.113.7"},
		{desc: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.2", "CF-Connecting-IP": "192.0.2.9"}, want: "198.51.100.2"},
		{desc: "cloudflare", headers: map[string]string{"CF-Connecting-IP": "2001:db8::1"}, want: "2001:db8::1"},
		{desc: "garbage skipped", headers: map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.2"}, want: "198.51.100.2"},
	}

	for _, ts := range tt {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range ts.headers {
			req.Header.Set(k, v)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, ts.desc)

		body := make([]byte, 64)
		n, _ := resp.Body.Read(body)
		assert.Equal(t, ts.want, string(body[:n]), ts.desc)
	}
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		meta, ok := reqctx.RequestMetaFromContext(c.Context())
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"id": meta.RequestID, "ip": meta.ClientIP, "ref": meta.Referrer})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	req.Header.Set("Referer", "https://studio.test/")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)
}

func TestGlobalLimiter(t *testing.T) {
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	for _, client := range []*redis.Client{nil, rdb} {
		app := fiber.New()
		app.Use(NewGlobalLimiter(config.GlobalLimitConfig{Max: 2, ExpirationSeconds: 60}, client))
		app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

		var codes []int
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			resp, err := app.Test(req)
			require.NoError(t, err)
			codes = append(codes, resp.StatusCode)
		}
		assert.Equal(t, []int{204, 204, 429}, codes)
	}
}
