package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pontoon.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}

sessions {
  ttl          = "5m"
  max_sessions = 50
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "text", cfg.Server.LogFormat)
	assert.Equal(t, 50, cfg.Sessions.MaxSessions)

	ttl, err := cfg.SessionTTL()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)

	interval, err := cfg.SweepInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)
}

func TestLoadInvalidHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `server {`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `server { port = "abc" }`))
	assert.Error(t, err)
}

func TestLoadPartialFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `sessions { ttl = "0" }`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)

	ttl, err := cfg.SessionTTL()
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"log level", func(c *Config) { c.Server.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.Server.LogFormat = "xml" }},
		{"ttl", func(c *Config) { c.Sessions.TTL = "soon" }},
		{"negative interval", func(c *Config) { c.Sessions.SweepInterval = "-1s" }},
		{"max sessions", func(c *Config) { c.Sessions.MaxSessions = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
