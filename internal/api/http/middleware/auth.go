package middleware

import (
	"github.com/gofiber/fiber/v3"

	pasetotoken "github.com/Alijeyrad/studio_backend/pkg/paseto"
)

// AdminRequired validates a Bearer PASETO access token carrying the admin role.
// On success, stores *pasetotoken.Claims in c.Locals(pasetotoken.CtxKeyClaims).
func AdminRequired(mgr *pasetotoken.Manager) fiber.Handler {
	return pasetotoken.FiberAuth(mgr, pasetotoken.RoleAdmin)
}
