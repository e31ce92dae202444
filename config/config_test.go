package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.HTTPPort)
	assert.Equal(t, "/api/v1", cfg.APIURL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.PwdSalt)
	assert.Equal(t, "inr", cfg.CheckoutCurrency)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_EnvFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "API_URL=api/v2/\nPWD_SALT=4\nTOKEN_TTL=2h\nREDIS_ADDR=localhost:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("PWD_SALT", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "/api/v2", cfg.APIURL)
	assert.Equal(t, 5, cfg.PwdSalt, "environment overrides the file")
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.CacheEnabled())
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }},
		{name: "empty db url", mutate: func(c *Config) { c.DBURL = "" }},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.PwdSalt = 1 }},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.PwdSalt = 40 }},
		{name: "zero token ttl", mutate: func(c *Config) { c.TokenTTL = 0 }},
		{name: "negative request timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }},
		{name: "empty secret", mutate: func(c *Config) { c.TokenSecret = "" }},
		{name: "bad port", mutate: func(c *Config) { c.HTTPPort = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base.Validate())
}
