package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

var (
	// ErrEmptyDeck is returned when drawing from a deck with no cards left.
	ErrEmptyDeck = errors.New("deck is empty")

	// ErrNotADeck is returned when combining a deck with something that is not one.
	ErrNotADeck = errors.New("can only combine a deck with another deck")
)

// Deck is an ordered, double-ended pile of cards. The top of the deck is the
// end of the underlying slice.
//
// A Deck is not safe for concurrent use.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

type options struct {
	ranks   []Rank
	suits   []Suit
	repeats int
	rng     *rand.Rand
}

// Option configures New.
type Option func(*options)

// WithRanks overrides the ranks a new deck is built from.
func WithRanks(ranks ...Rank) Option {
	return func(o *options) { o.ranks = ranks }
}

// WithSuits overrides the suits a new deck is built from.
func WithSuits(suits ...Suit) Option {
	return func(o *options) { o.suits = suits }
}

// WithRepeats builds n copies of every rank and suit combination.
func WithRepeats(n int) Option {
	return func(o *options) { o.repeats = n }
}

// WithRand sets the source used by Shuffle. Without it the global
// math/rand/v2 source is used.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// New builds a deck of ranks × suits × repeats cards, rank-major: all suits
// (and their repeats) of the first rank come first. With no options this is
// a standard unshuffled 52-card deck.
func New(opts ...Option) *Deck {
	o := options{ranks: Ranks, suits: Suits, repeats: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.repeats < 0 {
		o.repeats = 0
	}

	d := &Deck{
		cards: make([]Card, 0, len(o.ranks)*len(o.suits)*o.repeats),
		rng:   o.rng,
	}
	for _, rank := range o.ranks {
		for _, suit := range o.suits {
			for range o.repeats {
				d.cards = append(d.cards, Card{Rank: rank, Suit: suit})
			}
		}
	}
	return d
}

// FromCards creates a deck holding a copy of cards; the last card is the top.
func FromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Shuffle randomizes the order of cards in the deck. It is not suitable for
// anything that needs cryptographic unpredictability.
func (d *Deck) Shuffle() {
	swap := func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] }
	if d.rng != nil {
		d.rng.Shuffle(len(d.cards), swap)
		return
	}
	rand.Shuffle(len(d.cards), swap)
}

// DrawTop removes and returns the top card
func (d *Deck) DrawTop() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return card, nil
}

// DrawBottom removes and returns the bottom card
func (d *Deck) DrawBottom() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// InsertTop places card on top of the deck
func (d *Deck) InsertTop(card Card) {
	d.cards = append(d.cards, card)
}

// InsertBottom places card at the bottom of the deck
func (d *Deck) InsertBottom(card Card) {
	d.cards = append([]Card{card}, d.cards...)
}

// Concat returns a new deck holding d's cards below other's. Neither operand
// is modified. The result shuffles with d's source.
func (d *Deck) Concat(other *Deck) (*Deck, error) {
	if d == nil || other == nil {
		return nil, fmt.Errorf("concat: %w", ErrNotADeck)
	}
	cards := make([]Card, 0, len(d.cards)+len(other.cards))
	cards = append(cards, d.cards...)
	cards = append(cards, other.cards...)
	return &Deck{cards: cards, rng: d.rng}, nil
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the deck, bottom card first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Peek returns the top card without removing it from the deck
func (d *Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[len(d.cards)-1], true
}

// Equal reports whether both decks hold the same cards in the same order.
func (d *Deck) Equal(other *Deck) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.cards) != len(other.cards) {
		return false
	}
	for i := range d.cards {
		if d.cards[i] != other.cards[i] {
			return false
		}
	}
	return true
}

// String describes the deck size, e.g. "Deck(52)".
func (d *Deck) String() string {
	return fmt.Sprintf("Deck(%d)", len(d.cards))
}
