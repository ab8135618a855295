package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/studio_backend/internal/service/admin"
	"github.com/Alijeyrad/studio_backend/pkg/reqctx"
)

type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// POST /api/v1/admin/login
func (h *AdminHandler) Login(c fiber.Ctx) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.svc.Login(c.Context(), body.Password)
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, sess)
}

// GET /api/v1/admin/submissions?status=&page=&per_page=
func (h *AdminHandler) List(c fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	res, err := h.svc.List(c.Context(), admin.ListRequest{
		Status:  c.Query("status"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, res)
}

// GET /api/v1/admin/submissions/:id
func (h *AdminHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid submission id")
	}

	sub, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, sub)
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, stats)
}

func mapAdminError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, admin.ErrInvalidCredentials):
		return unauthorized(c, "invalid password")
	case errors.Is(err, admin.ErrNotConfigured):
		return serviceUnavailable(c, "admin access is not configured")
	case errors.Is(err, admin.ErrNotFound):
		return notFound(c, "submission not found")
	case errors.Is(err, admin.ErrInvalidStatus):
		return badRequest(c, "unknown status filter")
	default:
		slog.Error("admin request failed", append([]any{slog.Any("error", err)}, reqctx.LogAttrs(c.Context())...)...)
		return internalError(c, "")
	}
}
