package middleware

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// FallbackIP is used when no proxy header carries a usable address.
const FallbackIP = "127.0.0.1"

// clientIPHeaders are consulted in order; X-Forwarded-For contributes its first hop.
var clientIPHeaders = []string{
	fiber.HeaderXForwardedFor,
	"X-Real-IP",
	"CF-Connecting-IP",
}

// ClientIP resolves the caller address from proxy headers. The socket address is ignored
// because the service always runs behind a proxy or CDN.
func ClientIP(c fiber.Ctx) string {
	for _, h := range clientIPHeaders {
		v := c.Get(h)
		if v == "" {
			continue
		}
		if h == fiber.HeaderXForwardedFor {
			v, _, _ = strings.Cut(v, ",")
		}
		v = strings.TrimSpace(v)
		if net.ParseIP(v) != nil {
			return strings.Clone(v)
		}
	}
	return FallbackIP
}
