// Package config loads server settings from an optional HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server   ServerSettings
	Sessions SessionSettings
}

// file is the on-disk layout; both blocks are optional.
type file struct {
	Server   *ServerSettings  `hcl:"server,block"`
	Sessions *SessionSettings `hcl:"sessions,block"`
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	LogFormat string `hcl:"log_format,optional"`
}

// SessionSettings controls how long idle games are kept
type SessionSettings struct {
	TTL           string `hcl:"ttl,optional"`
	SweepInterval string `hcl:"sweep_interval,optional"`
	MaxSessions   int    `hcl:"max_sessions,optional"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   "localhost",
			Port:      8080,
			LogLevel:  "info",
			LogFormat: "text",
		},
		Sessions: SessionSettings{
			TTL:           "30m",
			SweepInterval: "1m",
			MaxSessions:   10000,
		},
	}
}

// Load reads filename, falling back to defaults if it does not exist.
// Omitted blocks and string values take their defaults; max_sessions = 0 in a
// sessions block means no limit.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	parsed, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(parsed.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := *Default()
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Sessions != nil {
		cfg.Sessions = *raw.Sessions
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = def.Server.LogFormat
	}
	if c.Sessions.TTL == "" {
		c.Sessions.TTL = def.Sessions.TTL
	}
	if c.Sessions.SweepInterval == "" {
		c.Sessions.SweepInterval = def.Sessions.SweepInterval
	}
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	switch c.Server.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q", c.Server.LogFormat)
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	if _, err := c.SweepInterval(); err != nil {
		return err
	}
	if c.Sessions.MaxSessions < 0 {
		return fmt.Errorf("max_sessions must not be negative")
	}
	return nil
}

// SessionTTL returns the parsed idle timeout; zero disables eviction.
func (c *Config) SessionTTL() (time.Duration, error) {
	return parseDuration("sessions.ttl", c.Sessions.TTL)
}

// SweepInterval returns how often idle sessions are checked.
func (c *Config) SweepInterval() (time.Duration, error) {
	return parseDuration("sessions.sweep_interval", c.Sessions.SweepInterval)
}

// ListenAddress returns the host:port the server should bind to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" || value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}
