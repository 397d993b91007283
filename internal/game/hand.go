package game

import (
	"encoding/json"

	"github.com/lox/pontoon/internal/deck"
)

// BustThreshold is the highest total a hand can hold without busting.
const BustThreshold = 21

// Hand is an append-only sequence of cards held by the player or the dealer.
type Hand struct {
	cards []deck.Card
}

// NewHand returns a hand holding cards, in order.
func NewHand(cards ...deck.Card) Hand {
	return Hand{cards: append([]deck.Card(nil), cards...)}
}

// Add appends a card to the hand.
func (h *Hand) Add(c deck.Card) {
	h.cards = append(h.cards, c)
}

// Cards returns a copy of the cards in the order they were dealt.
func (h Hand) Cards() []deck.Card {
	return append([]deck.Card{}, h.cards...)
}

// Len returns the number of cards in the hand.
func (h Hand) Len() int {
	return len(h.cards)
}

// Value returns the best total for the hand, see HandValue.
func (h Hand) Value() int {
	return HandValue(h.cards)
}

// IsBusted reports whether the hand is over 21.
func (h Hand) IsBusted() bool {
	return IsBusted(h.cards)
}

// IsSoft reports whether the hand's total counts an Ace as 11.
func (h Hand) IsSoft() bool {
	_, soft := Evaluate(h.cards)
	return soft
}

// MarshalJSON encodes the hand as an array of cards.
func (h Hand) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Cards())
}

// CardValue returns a card's count before ace adjustment: Aces 11, faces 10.
func CardValue(c deck.Card) int {
	switch {
	case c.Rank == deck.Ace:
		return 11
	case c.Rank > deck.Ten:
		return 10
	default:
		return int(c.Rank)
	}
}

// Evaluate totals cards with every Ace at 11, then drops Aces to 1 one at a
// time while the total is over 21. soft reports whether an Ace is still
// counted as 11 in the result.
func Evaluate(cards []deck.Card) (total int, soft bool) {
	high := 0
	for _, c := range cards {
		total += CardValue(c)
		if c.IsAce() {
			high++
		}
	}
	for total > BustThreshold && high > 0 {
		total -= 10
		high--
	}
	return total, high > 0
}

// HandValue returns the highest total not over 21 that the cards can make by
// counting each Ace as 1 or 11, or the lowest total when every choice busts.
func HandValue(cards []deck.Card) int {
	total, _ := Evaluate(cards)
	return total
}

// IsBusted reports whether cards total more than 21.
func IsBusted(cards []deck.Card) bool {
	return HandValue(cards) > BustThreshold
}
