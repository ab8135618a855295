package handler

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/studio_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/studio_backend/internal/service/contact"
)

type ContactHandler struct {
	svc contact.Service
}

func NewContactHandler(svc contact.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// POST /api/v1/contact
//
// The body is handed to the service undecoded so the quota check runs before any parsing.
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	meta := middleware.RequestMetaFromFiber(c)

	res, err := h.svc.Submit(c.Context(), contact.ClientContext{
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
		RequestID: meta.RequestID,
	}, c.Body())
	if err != nil {
		return mapContactError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": res.Message,
		"id":      res.ID,
	})
}

func mapContactError(c fiber.Ctx, err error) error {
	var (
		quota *contact.QuotaError
		verr  *contact.ValidationError
	)
	switch {
	case errors.As(err, &quota):
		d := quota.Decision
		retry := int(math.Ceil(d.RetryAfter(time.Now()).Seconds()))
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(max(retry, 1)))
		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetTime.Unix(), 10))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests. Please try again later.",
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": verr.Details,
		})
	case errors.Is(err, contact.ErrInvalidBody):
		return badRequest(c, "Invalid request body")
	default:
		return internalError(c, "Failed to save submission")
	}
}
