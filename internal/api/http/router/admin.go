package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/studio_backend/internal/api/http/handler"
)

func (r *Router) registerAdminRoutes(api fiber.Router, h *handler.AdminHandler, adminRequired fiber.Handler) {
	g := api.Group("/admin")
	g.Post("/login", h.Login)

	g.Get("/submissions", adminRequired, h.List)
	g.Get("/submissions/:id", adminRequired, h.Get)
	g.Get("/stats", adminRequired, h.Stats)
}
