package strategy

import "github.com/lox/pontoon/internal/game"

// Basic is a simplified blackjack basic strategy for a dealer who stands on
// all 17s. It never needs the hole card.
type Basic struct{}

func (Basic) Name() string { return "basic" }

func (Basic) Decide(state game.State) Action {
	total, soft := game.Evaluate(state.PlayerHand)
	up, ok := upCard(state)
	if !ok {
		up = 10
	}

	switch {
	case total <= 11:
		return Hit
	case soft:
		if total <= 17 {
			return Hit
		}
		return Stand
	case total >= 17:
		return Stand
	case total == 12:
		if up >= 4 && up <= 6 {
			return Stand
		}
		return Hit
	default:
		// Hard 13 to 16
		if up <= 6 {
			return Stand
		}
		return Hit
	}
}
