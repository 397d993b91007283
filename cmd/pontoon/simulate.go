package main

import (
	"fmt"
	"time"

	"github.com/lox/pontoon/cmd/pontoon/shared"
	"github.com/lox/pontoon/internal/fileutil"
	"github.com/lox/pontoon/internal/randutil"
	"github.com/lox/pontoon/internal/simulator"
	"github.com/lox/pontoon/internal/statistics"
	"github.com/lox/pontoon/internal/strategy"
)

// SimulateCmd plays many rounds without a UI and reports the results
type SimulateCmd struct {
	Rounds    int    `short:"n" default:"100000" help:"Number of rounds to play"`
	Workers   int    `short:"w" default:"0" help:"Parallel workers (0 = GOMAXPROCS)"`
	Seed      *int64 `env:"PONTOON_SEED" help:"Deterministic RNG seed (optional)"`
	Strategy  string `default:"threshold" enum:"threshold,basic" help:"Player strategy: threshold or basic"`
	StandOn   int    `name:"stand-on" default:"17" help:"Total the threshold strategy stands on"`
	Output    string `short:"o" type:"path" help:"Write a JSON report to this file"`
	Debug     bool   `help:"Enable debug logging"`
	LogFormat string `default:"text" enum:"text,json,logfmt" help:"Log format"`
}

// simulationReport is the JSON written by --output.
type simulationReport struct {
	Strategy string            `json:"strategy"`
	Seed     int64             `json:"seed"`
	Workers  int               `json:"workers"`
	Duration string            `json:"duration"`
	Results  statistics.Report `json:"results"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(shared.LevelFor("info", c.Debug), c.LogFormat)

	s, err := strategy.ByName(c.Strategy, c.StandOn)
	if err != nil {
		return err
	}
	_, seed := randutil.Resolve(c.Seed)

	logger.Info("Starting simulation", "rounds", c.Rounds, "strategy", s.Name(), "seed", seed)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	start := time.Now()
	stats, err := simulator.Run(ctx, simulator.Config{
		Rounds:   c.Rounds,
		Workers:  c.Workers,
		Seed:     seed,
		Strategy: s,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	logger.Info("Simulation complete",
		"rounds", stats.Rounds(),
		"duration", elapsed.Round(time.Millisecond),
		"rounds_per_sec", fmt.Sprintf("%.0f", float64(stats.Rounds())/elapsed.Seconds()))
	fmt.Println(stats.Summary())

	if c.Output != "" {
		report := simulationReport{
			Strategy: s.Name(),
			Seed:     seed,
			Workers:  c.Workers,
			Duration: elapsed.String(),
			Results:  stats.Report(),
		}
		if err := fileutil.WriteJSONAtomic(c.Output, report); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Output)
	}
	return nil
}
