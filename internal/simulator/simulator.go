// Package simulator plays many rounds with a fixed strategy and aggregates
// the results.
//
// Round i is always dealt from a generator seeded with
// randutil.Derive(seed, i), so a run is reproducible from its seed and the
// aggregate does not depend on how many workers played it.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/randutil"
	"github.com/lox/pontoon/internal/statistics"
	"github.com/lox/pontoon/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// maxHits bounds a single player turn. A 52-card deck cannot deal more than
// eleven cards to one hand without busting it.
const maxHits = 12

// Config controls a simulation run.
type Config struct {
	Rounds   int
	Workers  int // Defaults to GOMAXPROCS
	Seed     int64
	Strategy strategy.Strategy
	Logger   *log.Logger
}

// Run plays cfg.Rounds rounds and returns their statistics.
func Run(ctx context.Context, cfg Config) (*statistics.Statistics, error) {
	if cfg.Rounds < 0 {
		return nil, fmt.Errorf("rounds must be non-negative, got %d", cfg.Rounds)
	}
	if cfg.Strategy == nil {
		return nil, errors.New("strategy is required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, min(workers, cfg.Rounds))
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("simulator")

	logger.Debug("Starting simulation",
		"rounds", cfg.Rounds,
		"workers", workers,
		"seed", cfg.Seed,
		"strategy", cfg.Strategy.Name())

	g, ctx := errgroup.WithContext(ctx)
	partials := make([]*statistics.Statistics, workers)

	for w := range workers {
		partials[w] = statistics.New()
		g.Go(func() error {
			// Workers take every workers-th round so each round keeps its seed
			for i := w; i < cfg.Rounds; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := PlayRound(cfg.Strategy, cfg.Seed, i)
				if err != nil {
					return fmt.Errorf("round %d: %w", i, err)
				}
				if err := partials[w].Add(result); err != nil {
					return fmt.Errorf("round %d: %w", i, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := statistics.New()
	for _, p := range partials {
		stats.Merge(p)
	}
	logger.Debug("Simulation complete", "rounds", stats.Rounds(), "mean", stats.Mean())
	return stats, nil
}

// PlayRound plays round i of a run seeded with seed.
func PlayRound(s strategy.Strategy, seed int64, i int) (statistics.RoundResult, error) {
	g := game.New(game.WithRand(randutil.New(randutil.Derive(seed, i))))
	state, err := g.Start()
	if err != nil {
		return statistics.RoundResult{}, err
	}

	for range maxHits {
		if state.GameOver || s.Decide(state) == strategy.Stand {
			break
		}
		if res := g.PlayerHit(); res.Status == game.StatusError {
			return statistics.RoundResult{}, errors.New(res.Message)
		}
		state = g.Snapshot()
	}

	result := statistics.RoundResult{
		Round:       i,
		PlayerCards: len(g.PlayerHand()),
	}

	if g.GameOver() {
		// Player busted; the dealer never plays
		result.Status = game.StatusLoss
		result.PlayerBust = true
		result.PlayerValue = game.HandValue(g.PlayerHand())
		return result, nil
	}

	out, err := g.PlayerStand()
	if err != nil {
		return statistics.RoundResult{}, err
	}
	result.Status = out.Status
	result.PlayerValue = out.PlayerValue
	result.DealerValue = out.DealerValue
	result.DealerBust = out.DealerValue > game.BustThreshold
	return result, nil
}
