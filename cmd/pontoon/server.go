package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pontoon/cmd/pontoon/shared"
	"github.com/lox/pontoon/internal/config"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/randutil"
	"github.com/lox/pontoon/internal/server"
	"github.com/lox/pontoon/internal/session"
)

// ServerCmd runs the HTTP/WebSocket server
type ServerCmd struct {
	Config      string `short:"c" default:"pontoon.hcl" env:"PONTOON_CONFIG" help:"Path to HCL configuration file (optional)"`
	Addr        string `short:"a" env:"PONTOON_ADDR" help:"Server address to bind to (overrides config)"`
	Debug       bool   `env:"PONTOON_DEBUG" help:"Enable debug logging"`
	LogLevel    string `env:"PONTOON_LOG_LEVEL" help:"Log level (overrides config)"`
	LogFormat   string `env:"PONTOON_LOG_FORMAT" help:"Log format: text, json or logfmt (overrides config)"`
	Seed        *int64 `env:"PONTOON_SEED" help:"Deterministic RNG seed (optional)"`
	SessionTTL  string `name:"session-ttl" env:"PONTOON_SESSION_TTL" help:"Idle time before a game is discarded, e.g. 30m (overrides config)"`
	MaxSessions *int   `env:"PONTOON_MAX_SESSIONS" help:"Maximum concurrent games, 0 for no limit (overrides config)"`
}

// load reads the config file and applies flag overrides.
func (c *ServerCmd) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Addr != "" {
		cfg.Server.Address, cfg.Server.Port, err = splitAddr(c.Addr, cfg.Server.Port)
		if err != nil {
			return nil, err
		}
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Server.LogFormat = c.LogFormat
	}
	if c.SessionTTL != "" {
		cfg.Sessions.TTL = c.SessionTTL
	}
	if c.MaxSessions != nil {
		cfg.Sessions.MaxSessions = *c.MaxSessions
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}

	logger := shared.SetupLogger(shared.LevelFor(cfg.Server.LogLevel, c.Debug), cfg.Server.LogFormat)

	_, seed := randutil.Resolve(c.Seed)
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Debug("Using random seed", "seed", seed)
	}

	ttl, _ := cfg.SessionTTL() // Checked by Validate
	sweep, _ := cfg.SweepInterval()

	sessions := session.NewTable(
		session.Config{TTL: ttl, MaxSessions: cfg.Sessions.MaxSessions},
		newGameFunc(seed, logger),
		session.WithLogger(logger),
	)
	s := server.NewServer(sessions, logger)

	logger.Info("Starting pontoon server",
		"address", cfg.ListenAddress(),
		"session_ttl", ttl,
		"max_sessions", cfg.Sessions.MaxSessions)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	go sessions.Run(ctx, sweep)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(cfg.ListenAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// newGameFunc gives every session its own generator, derived from seed and
// the order in which sessions were created.
func newGameFunc(seed int64, logger *log.Logger) session.NewGameFunc {
	var n atomic.Int64
	return func() *game.Game {
		i := int(n.Add(1))
		return game.New(
			game.WithRand(randutil.New(randutil.Derive(seed, i))),
			game.WithLogger(logger),
		)
	}
}
