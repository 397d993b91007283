package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the pontoon HTTP/WebSocket server"`
	Play     PlayCmd          `cmd:"" help:"Play interactively in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate many rounds with a fixed strategy"`
}

func main() {
	// A .env file is optional; real environment variables take precedence
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pontoon"),
		kong.Description("Pontoon (blackjack) rules engine, server and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
