// Package strategy decides whether a player hits or stands.
package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/pontoon/internal/game"
)

// Action is a player decision.
type Action int

const (
	Stand Action = iota
	Hit
)

func (a Action) String() string {
	if a == Hit {
		return "hit"
	}
	return "stand"
}

// Strategy chooses an action from the player's view of the game.
type Strategy interface {
	Name() string
	Decide(state game.State) Action
}

// ByName returns the named strategy. standOn configures the threshold
// strategy and is ignored by the others.
func ByName(name string, standOn int) (Strategy, error) {
	switch strings.ToLower(name) {
	case "threshold", "":
		return NewThreshold(standOn), nil
	case "basic":
		return Basic{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// upCard returns the dealer's visible card value, counting an Ace as 11.
func upCard(state game.State) (int, bool) {
	if len(state.DealerHand.Cards) == 0 {
		return 0, false
	}
	return game.CardValue(state.DealerHand.Cards[0]), true
}
