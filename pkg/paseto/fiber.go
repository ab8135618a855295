package pasetotoken

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/studio_backend/config"
)

const CtxKeyClaims = "auth.claims"

// FiberAuth rejects requests without a valid Bearer token carrying role.
func FiberAuth(m *Manager, role string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearer(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := m.Verify(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if role != "" && claims.Role != role {
			return fiber.ErrForbidden
		}

		c.Locals(CtxKeyClaims, claims)
		return c.Next()
	}
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	cl, ok := c.Locals(CtxKeyClaims).(*Claims)
	return cl, ok
}

// NewPasetoManager creates a PASETO manager from the admin section of the config.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Admin.Paseto

	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(p.Mode),
		SymmetricHex: p.LocalKeyHex,
		SecretHex:    p.SecretKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:      Mode(p.Mode),
		Issuer:    p.Issuer,
		Audience:  p.Audience,
		AccessTTL: time.Duration(p.AccessTTLMinutes) * time.Minute,
	}, keys)
}
