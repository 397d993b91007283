// Package game implements the rules engine for a single-deck pontoon round.
//
// The main type is Game, which owns a deck and two hands (player and dealer)
// and moves through three phases: not started, in progress and round over.
//
// # Basic Usage
//
//	g := game.New(game.WithRand(randutil.New(42)))
//	state, err := g.Start()
//	// ...
//	res := g.PlayerHit()
//	if res.Status == game.StatusBusted {
//	    // round is over, the player lost
//	}
//	outcome, err := g.PlayerStand()
//
// # Error Conventions
//
// PlayerHit never returns an error: hitting after standing or after the
// round is over yields a HitResult with StatusError and no change to the
// hand. PlayerStand on a finished round returns ErrRoundOver, which callers
// must handle. The asymmetry is part of the public contract.
//
// # Hidden Information
//
// Snapshot reveals only the dealer's first card, and reports the dealer
// total as hidden, until the round is over.
//
// A Game is not safe for concurrent use; callers serialise access per game.
package game
