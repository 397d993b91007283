package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/pontoon/cmd/pontoon/shared"
	"github.com/lox/pontoon/internal/client"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/randutil"
	"github.com/lox/pontoon/internal/tui"
)

// PlayCmd opens the terminal table
type PlayCmd struct {
	Server  string `short:"s" env:"PONTOON_SERVER" help:"Play against a remote server, e.g. http://localhost:8080 (default: local engine)"`
	Seed    *int64 `env:"PONTOON_SEED" help:"Deterministic RNG seed for local play (optional)"`
	LogFile string `env:"PONTOON_LOG_FILE" type:"path" help:"Write debug logs to this file"`
}

func (c *PlayCmd) Run() error {
	logger, closeLog, err := c.logger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := shared.SetupSignalHandler()

	if c.Server != "" {
		return c.playRemote(ctx, logger)
	}

	rng, seed := randutil.Resolve(c.Seed)
	logger.Debug("Playing locally", "seed", seed)
	table := tui.NewLocalTable(game.New(game.WithRand(rng), game.WithLogger(logger)))
	return tui.Run(ctx, table)
}

func (c *PlayCmd) playRemote(ctx context.Context, logger *log.Logger) error {
	cl, err := client.Dial(ctx, c.Server, client.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	logger.Debug("Connected", "server", c.Server)
	return tui.Run(ctx, cl)
}

// logger returns a file logger when --log-file is set. The terminal belongs
// to the UI, so nothing is logged otherwise.
func (c *PlayCmd) logger() (*log.Logger, func(), error) {
	if c.LogFile == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return shared.NewLogger(f, "debug", "text"), func() { _ = f.Close() }, nil
}
