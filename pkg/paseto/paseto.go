package pasetotoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

type Config struct {
	Mode     Mode
	Issuer   string
	Audience string

	// AccessTTL is the admin session length, 12h when unset.
	AccessTTL time.Duration

	// Implicit is optional implicit assertion bytes bound into every token.
	Implicit []byte
}

// Manager issues and verifies admin access tokens.
type Manager struct {
	cfg    Config
	keys   Keys
	parser paseto.Parser
	now    func() time.Time
}

func New(cfg Config, keys Keys) (*Manager, error) {
	switch {
	case cfg.Mode != keys.Mode:
		return nil, ErrConfig{Msg: "mode " + string(cfg.Mode) + " does not match keys (" + string(keys.Mode) + ")"}
	case cfg.Issuer == "":
		return nil, ErrConfig{Msg: "issuer is required"}
	case cfg.Audience == "":
		return nil, ErrConfig{Msg: "audience is required"}
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 12 * time.Hour
	}

	// time based claims are checked in Verify against m.now
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(cfg.Issuer))
	parser.AddRule(paseto.ForAudience(cfg.Audience))

	return &Manager{cfg: cfg, keys: keys, parser: parser, now: time.Now}, nil
}

// IssueAccess returns an access token for subject carrying role, and when it expires.
func (m *Manager) IssueAccess(subject, role string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.cfg.AccessTTL)

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(randHex(16))
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(exp)
	tok.SetSubject(subject)
	tok.SetString("typ", string(TokenTypeAccess))
	tok.SetString("role", role)

	s, err := m.seal(&tok)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	tok, err := m.open(tokenStr)
	if err != nil {
		return nil, err
	}

	claims, err := extractClaims(tok, m.cfg.Issuer, m.cfg.Audience)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	now := m.now()
	switch {
	case now.Before(claims.NotBefore):
		return nil, ErrInvalidToken{Err: errors.New("token not yet valid")}
	case !now.Before(claims.ExpiresAt):
		return nil, ErrInvalidToken{Err: errors.New("token expired")}
	case claims.Type != TokenTypeAccess:
		return nil, ErrInvalidToken{Err: errors.New("unexpected token type " + string(claims.Type))}
	}

	return claims, nil
}

func (m *Manager) seal(tok *paseto.Token) (string, error) {
	switch m.cfg.Mode {
	case ModeLocal:
		if m.keys.Symmetric == nil {
			return "", ErrConfig{Msg: "missing symmetric key"}
		}
		return tok.V4Encrypt(*m.keys.Symmetric, m.cfg.Implicit), nil
	case ModePublic:
		if m.keys.Secret == nil {
			return "", ErrConfig{Msg: "verify-only keys cannot issue tokens"}
		}
		return tok.V4Sign(*m.keys.Secret, m.cfg.Implicit), nil
	default:
		return "", ErrConfig{Msg: "unknown mode"}
	}
}

func (m *Manager) open(tokenStr string) (*paseto.Token, error) {
	var (
		tok *paseto.Token
		err error
	)
	switch m.cfg.Mode {
	case ModeLocal:
		if m.keys.Symmetric == nil {
			return nil, ErrConfig{Msg: "missing symmetric key"}
		}
		tok, err = m.parser.ParseV4Local(*m.keys.Symmetric, tokenStr, m.cfg.Implicit)
	case ModePublic:
		if m.keys.Public == nil {
			return nil, ErrConfig{Msg: "missing public key"}
		}
		tok, err = m.parser.ParseV4Public(*m.keys.Public, tokenStr, m.cfg.Implicit)
	default:
		return nil, ErrConfig{Msg: "unknown mode"}
	}
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	return tok, nil
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func extractClaims(tok *paseto.Token, iss, aud string) (*Claims, error) {
	c := &Claims{Issuer: iss, Audience: aud}

	var (
		typ string
		err error
	)
	steps := []func() error{
		func() error { c.TokenID, err = tok.GetJti(); return err },
		func() error { c.Subject, err = tok.GetSubject(); return err },
		func() error { c.IssuedAt, err = tok.GetIssuedAt(); return err },
		func() error { c.NotBefore, err = tok.GetNotBefore(); return err },
		func() error { c.ExpiresAt, err = tok.GetExpiration(); return err },
		func() error { typ, err = tok.GetString("typ"); return err },
		func() error { c.Role, err = tok.GetString("role"); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	c.Type = TokenType(typ)

	return c, nil
}
