package pasetotoken

import (
	"time"
)

type TokenType string

const TokenTypeAccess TokenType = "access"

// RoleAdmin is the only role the service issues.
const RoleAdmin = "admin"

// Claims is the app-facing token payload.
type Claims struct {
	Type    TokenType
	Subject string
	Role    string

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
