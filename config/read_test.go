package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, 15, cfg.RateLimit.WindowMinutes)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 1000, cfg.Admin.LoginFloorMs)
}

func TestReadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	body := `
server:
  port: 9090
rate_limit:
  max_requests: 3
email:
  enabled: true
  from: "Studio <hello@example.com>"
  notify_to: ["owner@example.com"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	t.Setenv("LEADS_RATE_LIMIT_WINDOW_MINUTES", "30")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30, cfg.RateLimit.WindowMinutes)
	assert.Equal(t, []string{"owner@example.com"}, cfg.Email.NotifyTo)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database:  DatabaseConfig{Driver: "sqlite", SQLitePath: "x.db"},
			RateLimit: RateLimitConfig{Backend: "memory", WindowMinutes: 15, MaxRequests: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "postgres without host", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "redis backend without addr", mutate: func(c *Config) { c.RateLimit.Backend = "redis" }, wantErr: true},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.WindowMinutes = 0 }, wantErr: true},
		{name: "email without from", mutate: func(c *Config) { c.Email.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
