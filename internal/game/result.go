package game

import "github.com/lox/pontoon/internal/deck"

// Status labels the result of a player action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusBusted  Status = "busted"
	StatusError   Status = "error"
	StatusWin     Status = "win"
	StatusLoss    Status = "loss"
	StatusTie     Status = "tie"
)

// Messages attached to results.
const (
	MsgCannotHit  = "Game over or player has already stood."
	MsgNotStarted = "Round has not started."
	MsgDeckEmpty  = "No cards left in the deck."
	MsgPlayerBust = "Player busted!"
	MsgPlayerWins = "Player wins!"
	MsgDealerWins = "Dealer wins!"
	MsgTie        = "It's a tie!"
)

// HitResult is returned by PlayerHit. Invalid hits are reported with
// StatusError and a message instead of an error value.
type HitResult struct {
	Status  Status      `json:"status"`
	Message string      `json:"message,omitempty"`
	Hand    []deck.Card `json:"hand,omitempty"`
}

// Outcome is the adjudicated result of a round.
type Outcome struct {
	Status      Status      `json:"status"`
	Message     string      `json:"message"`
	PlayerHand  []deck.Card `json:"player_hand"`
	DealerHand  []deck.Card `json:"dealer_hand"`
	PlayerValue int         `json:"player_value"`
	DealerValue int         `json:"dealer_value"`
}

// Adjudicate compares two final hands. A busted player always loses, even
// when the dealer has busted too.
func Adjudicate(player, dealer []deck.Card) Outcome {
	pv, dv := HandValue(player), HandValue(dealer)
	out := Outcome{
		PlayerHand:  append([]deck.Card{}, player...),
		DealerHand:  append([]deck.Card{}, dealer...),
		PlayerValue: pv,
		DealerValue: dv,
	}

	switch {
	case pv > BustThreshold:
		out.Status, out.Message = StatusLoss, MsgDealerWins
	case dv > BustThreshold || pv > dv:
		out.Status, out.Message = StatusWin, MsgPlayerWins
	case pv < dv:
		out.Status, out.Message = StatusLoss, MsgDealerWins
	default:
		out.Status, out.Message = StatusTie, MsgTie
	}
	return out
}
