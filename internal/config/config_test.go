package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, PermissionSourceStore, cfg.Auth.PermissionSource)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "X-Tenant-Subdomain")
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("AUTH_PERMISSION_SOURCE", "token")
	t.Setenv("DB_NAME", "legal")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, PermissionSourceToken, cfg.Auth.PermissionSource)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "legal", cfg.Database.DBName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "AUTH_JWT_SECRET"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad source", func(c *Config) { c.Auth.PermissionSource = "ldap" }, "unknown permission source"},
		{"bad cache", func(c *Config) { c.Cache.Type = "memcached" }, "unknown cache type"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "AUTH_TOKEN_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", testSecret)
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
