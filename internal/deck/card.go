package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidCard is returned when a card is built or parsed from a rank or
// suit outside the standard deck.
var ErrInvalidCard = errors.New("invalid card")

// Suit represents a card suit
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists the four suits in deck-building order.
var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// String returns the symbol for the suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Clubs && s <= Spades
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank, Ace low.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists Ace through King in deck-building order.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the face value of the rank ("A", "2".."10", "J", "Q", "K")
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	default:
		return "?"
	}
}

// Valid reports whether r is between Ace and King.
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// Card is an immutable playing card. Two cards are equal when rank and suit
// match, so == can be used directly.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card, rejecting ranks and suits outside the standard deck
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() || !suit.Valid() {
		return Card{}, fmt.Errorf("%w: rank %d suit %d", ErrInvalidCard, int(rank), int(suit))
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustCard is like NewCard but panics on invalid input. Intended for tests and
// fixed tables.
func MustCard(rank Rank, suit Suit) Card {
	c, err := NewCard(rank, suit)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the string representation of a card (e.g., "A♠", "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsZero reports whether c is the zero Card, which is never a valid card.
func (c Card) IsZero() bool {
	return c == Card{}
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsFaceCard returns true if the card is a face card (J, Q, K)
func (c Card) IsFaceCard() bool {
	return c.Rank >= Jack && c.Rank <= King
}

// HighRank returns the rank with aces high (Ace = 14).
func (c Card) HighRank() int {
	if c.Rank == Ace {
		return 14
	}
	return int(c.Rank)
}

type cardJSON struct {
	Value string `json:"value"`
	Suit  string `json:"suit"`
}

// MarshalJSON encodes the card as {"value":"A","suit":"♠"}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Value: c.Rank.String(), Suit: c.Suit.String()})
}

// UnmarshalJSON decodes the {"value","suit"} form.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCard(raw.Value + raw.Suit)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a single card such as "A♠", "10♥", "Td" or "qs".
// Suits may be given as symbols or as one of the letters c, d, h, s.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	suitRune, size := utf8.DecodeLastRuneInString(s)
	if size == 0 || len(s) == size {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	suit, ok := parseSuit(suitRune)
	if !ok {
		return Card{}, fmt.Errorf("%w: unknown suit in %q", ErrInvalidCard, s)
	}
	rank, ok := parseRank(s[:len(s)-size])
	if !ok {
		return Card{}, fmt.Errorf("%w: unknown rank in %q", ErrInvalidCard, s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a whitespace or comma separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards or panics.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseSuit(r rune) (Suit, bool) {
	switch r {
	case '♣', 'c', 'C':
		return Clubs, true
	case '♦', 'd', 'D':
		return Diamonds, true
	case '♥', 'h', 'H':
		return Hearts, true
	case '♠', 's', 'S':
		return Spades, true
	}
	return 0, false
}

func parseRank(s string) (Rank, bool) {
	switch strings.ToUpper(s) {
	case "A", "1":
		return Ace, true
	case "2":
		return Two, true
	case "3":
		return Three, true
	case "4":
		return Four, true
	case "5":
		return Five, true
	case "6":
		return Six, true
	case "7":
		return Seven, true
	case "8":
		return Eight, true
	case "9":
		return Nine, true
	case "10", "T":
		return Ten, true
	case "J":
		return Jack, true
	case "Q":
		return Queen, true
	case "K":
		return King, true
	}
	return 0, false
}
