package pasetotoken

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{Mode: keys.Mode, Issuer: "studio", Audience: "studio-admin", AccessTTL: time.Hour}, keys)
	require.NoError(t, err)
	return m
}

func TestManager_IssueVerify(t *testing.T) {
	for _, keys := range []Keys{NewLocalKeys(), NewPublicKeys()} {
		m := newTestManager(t, keys)

		token, exp, err := m.IssueAccess("admin", RoleAdmin)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

		claims, err := m.Verify(token)
		require.NoError(t, err, string(keys.Mode))
		assert.Equal(t, "admin", claims.Subject)
		assert.True(t, claims.IsAdmin())
		assert.Equal(t, TokenTypeAccess, claims.Type)
		assert.NotEmpty(t, claims.TokenID)
	}
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, _, err := m.IssueAccess("admin", RoleAdmin)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.Verify(token)

	var invalid ErrInvalidToken
	assert.ErrorAs(t, err, &invalid)
}

func TestManager_WrongKey(t *testing.T) {
	token, _, err := newTestManager(t, NewLocalKeys()).IssueAccess("admin", RoleAdmin)
	require.NoError(t, err)

	_, err = newTestManager(t, NewLocalKeys()).Verify(token)
	var invalid ErrInvalidToken
	assert.ErrorAs(t, err, &invalid)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	var cfgErr ErrConfig
	assert.ErrorAs(t, err, &cfgErr)

	_, err = LoadKeys(KeyStrings{Mode: "hmac"})
	assert.ErrorAs(t, err, &cfgErr)

	k := NewLocalKeys()
	loaded, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: k.Symmetric.ExportHex()})
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, loaded.Mode)

	pub := NewPublicKeys()
	loaded, err = LoadKeys(KeyStrings{Mode: ModePublic, SecretHex: pub.Secret.ExportHex()})
	require.NoError(t, err)
	require.NotNil(t, loaded.Public)
	assert.Equal(t, pub.Public.ExportHex(), loaded.Public.ExportHex())

	_, err = LoadKeys(KeyStrings{Mode: ModePublic})
	assert.ErrorAs(t, err, &cfgErr)
}

func TestFiberAuth(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	adminToken, _, err := m.IssueAccess("admin", RoleAdmin)
	require.NoError(t, err)
	viewerToken, _, err := m.IssueAccess("someone", "viewer")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/private", FiberAuth(m, RoleAdmin), func(c fiber.Ctx) error {
		claims, ok := ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(claims.Subject)
	})

	tt := []struct {
		desc   string
		header string
		status int
	}{
		{desc: "no header", header: "", status: http.StatusUnauthorized},
		{desc: "wrong scheme", header: "Basic " + adminToken, status: http.StatusUnauthorized},
		{desc: "garbage token", header: "Bearer v4.local.nope", status: http.StatusUnauthorized},
		{desc: "wrong role", header: "Bearer " + viewerToken, status: http.StatusForbidden},
		{desc: "admin", header: "bearer " + adminToken, status: http.StatusOK},
	}

	for _, ts := range tt {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if ts.header != "" {
			req.Header.Set("Authorization", ts.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, ts.desc)
		assert.Equal(t, ts.status, resp.StatusCode, ts.desc)
	}
}
