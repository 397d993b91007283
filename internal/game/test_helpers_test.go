package game

import (
	"slices"
	"testing"

	"github.com/lox/pontoon/internal/deck"
	"github.com/stretchr/testify/require"
)

// stacked returns a DeckSource whose cards are drawn in the order listed.
func stacked(draws string) DeckSource {
	return func() *deck.Deck {
		cards := deck.MustParseCards(draws)
		slices.Reverse(cards)
		return deck.FromCards(cards)
	}
}

// newStackedGame starts a game dealt from draws: player, player, dealer,
// dealer, then any further hits.
func newStackedGame(t *testing.T, draws string) *Game {
	t.Helper()
	g := New(WithDeckSource(stacked(draws)))
	_, err := g.Start()
	require.NoError(t, err)
	return g
}

func cards(s string) []deck.Card {
	return deck.MustParseCards(s)
}
