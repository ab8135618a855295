package http

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/internal/api/http/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Environment: "development", BodyLimitKB: 64},
	}
}

func TestNewApp_ErrorShape(t *testing.T) {
	app := NewApp(testConfig(), nil, false)
	app.Get("/boom", func(c fiber.Ctx) error {
		panic("boom")
	})

	tt := []struct {
		desc string
		path string
		code int
		body string
	}{
		{desc: "unknown route", path: "/nope", code: fiber.StatusNotFound, body: `{"error":"Not Found"}`},
		{desc: "recovered panic", path: "/boom", code: fiber.StatusInternalServerError},
	}

	for _, ts := range tt {
		t.Run(ts.desc, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, ts.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, ts.code, resp.StatusCode)
			assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
			assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			if ts.body != "" {
				assert.JSONEq(t, ts.body, string(raw))
			} else {
				assert.Contains(t, string(raw), `"error"`)
			}
		})
	}
}

func TestNewApp_GlobalLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Global = config.GlobalLimitConfig{Enabled: true, Max: 1, ExpirationSeconds: 60}

	app := NewApp(cfg, nil, false)
	app.Get("/ping", func(c fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
