package strategy

import (
	"fmt"

	"github.com/lox/pontoon/internal/game"
)

// Threshold hits until the player's total reaches StandOn.
type Threshold struct {
	StandOn int
}

// NewThreshold returns a Threshold strategy. Values outside 1..21 fall back
// to the dealer's own rule.
func NewThreshold(standOn int) Threshold {
	if standOn < 1 || standOn > game.BustThreshold {
		standOn = game.DealerStandsOn
	}
	return Threshold{StandOn: standOn}
}

func (t Threshold) Name() string {
	return fmt.Sprintf("threshold-%d", t.StandOn)
}

func (t Threshold) Decide(state game.State) Action {
	if state.PlayerValue < t.StandOn {
		return Hit
	}
	return Stand
}
