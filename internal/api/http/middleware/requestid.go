package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/studio_backend/pkg/reqctx"
)

const (
	HeaderRequestID = "X-Request-Id"
	LocalRequestID  = "request_id"
)

// RequestID preserves or generates a request id and attaches the request metadata
// (id, client ip, user agent, referrer) to the request context.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := strings.TrimSpace(c.Get(HeaderRequestID))
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		} else {
			rid = strings.Clone(rid)
		}

		c.Locals(LocalRequestID, rid)
		c.Set(HeaderRequestID, rid)
		c.Request().Header.Set(HeaderRequestID, rid)

		meta := &reqctx.RequestMeta{
			RequestID:   rid,
			ClientIP:    ClientIP(c),
			UserAgent:   strings.Clone(c.Get(fiber.HeaderUserAgent)),
			Referrer:    strings.Clone(c.Get(fiber.HeaderReferer)),
			RequestedAt: time.Now(),
		}
		c.SetContext(reqctx.WithRequestMeta(c.Context(), meta))

		return c.Next()
	}
}

// RequestMetaFromFiber returns the metadata RequestID attached, or a minimal one built on the spot.
func RequestMetaFromFiber(c fiber.Ctx) *reqctx.RequestMeta {
	if meta, ok := reqctx.RequestMetaFromContext(c.Context()); ok {
		return meta
	}
	return &reqctx.RequestMeta{
		ClientIP:    ClientIP(c),
		UserAgent:   strings.Clone(c.Get(fiber.HeaderUserAgent)),
		Referrer:    strings.Clone(c.Get(fiber.HeaderReferer)),
		RequestedAt: time.Now(),
	}
}
