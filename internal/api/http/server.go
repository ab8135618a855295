package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/studio_backend/internal/api/http/router"
	"github.com/Alijeyrad/studio_backend/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Log       *slog.Logger
	Redis     *redis.Client `optional:"true"`
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.Redis, p.OTel != nil)
	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					p.Log.Error("HTTP server error", "error", err)
				}
			}()
			p.Log.Info("HTTP server listening", slog.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the fiber app with global middleware but no routes.
func NewApp(cfg *config.Config, rdb *redis.Client, tracing bool) *fiber.App {
	fcfg := fiber.Config{
		AppName:      cfg.Observability.ServiceName,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: errorHandler,
	}
	if cfg.Server.BodyLimitKB > 0 {
		fcfg.BodyLimit = cfg.Server.BodyLimitKB * 1024
	}
	if cfg.Server.TimeoutSeconds > 0 {
		timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
		fcfg.ReadTimeout = timeout
		fcfg.WriteTimeout = timeout
	}
	app := fiber.New(fcfg)
	configureGlobalMiddleware(app, cfg, rdb, tracing && cfg.Observability.Tracing.Enabled)
	return app
}

// errorHandler renders framework errors (404, 405, 413, panics) in the same {"error": ...} shape
// the handlers use.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Error("unhandled request error", "error", err, "path", c.Path())
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client, tracing bool) {
	app.Use(middleware.RequestID())
	if tracing {
		app.Use(observability.FiberMiddleware())
	}
	app.Use(recoverer.New())

	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORS.AllowOrigins,
			AllowMethods:     cfg.Server.CORS.AllowMethods,
			AllowHeaders:     cfg.Server.CORS.AllowHeaders,
			AllowCredentials: cfg.Server.CORS.AllowCredentials,
			MaxAge:           cfg.Server.CORS.MaxAgeSeconds,
		}))
	}

	if cfg.Server.Environment == "production" {
		h := cfg.Server.Headers
		app.Use(helmet.New(helmet.Config{
			XSSProtection:      h.XSSProtection,
			ContentTypeNosniff: h.ContentTypeNosniff,
			XFrameOptions:      h.XFrameOptions,
			ReferrerPolicy:     h.ReferrerPolicy,
		}))
	}

	if cfg.RateLimit.Global.Enabled {
		app.Use(middleware.NewGlobalLimiter(cfg.RateLimit.Global, rdb))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${locals:request_id}] ${method} ${url} ${status} ${latency}\n",
	}))
}
