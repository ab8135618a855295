package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/internal/api/http/handler"
	"github.com/Alijeyrad/studio_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/studio_backend/internal/repo"
	"github.com/Alijeyrad/studio_backend/internal/service/admin"
	"github.com/Alijeyrad/studio_backend/internal/service/contact"
	pasetotoken "github.com/Alijeyrad/studio_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Store      repo.Store
	ContactSvc contact.Service
	AdminSvc   admin.Service
	PasetoMgr  *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	adminRequired := middleware.AdminRequired(r.p.PasetoMgr)

	contactH := handler.NewContactHandler(r.p.ContactSvc)
	adminH := handler.NewAdminHandler(r.p.AdminSvc)

	api := app.Group("/api/v1")

	r.registerContactRoutes(api, contactH)
	r.registerAdminRoutes(api, adminH, adminRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			return r.p.Store.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
