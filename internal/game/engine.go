package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/pontoon/internal/deck"
)

// DealerStandsOn is the total at which the dealer stops drawing. Soft totals
// are not treated specially: a soft 17 stands.
const DealerStandsOn = 17

// DeckSource returns the deck a new round is dealt from, ready to draw.
type DeckSource func() *deck.Deck

// Game is one player's session against the dealer.
type Game struct {
	deck        *deck.Deck
	player      Hand
	dealer      Hand
	started     bool
	gameOver    bool
	playerStuck bool

	source DeckSource
	logger *log.Logger
}

// Option configures a Game.
type Option func(*Game)

// WithRand shuffles every new deck with rng, making deals reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.source = ShuffledDeck(rng)
	}
}

// WithDeckSource replaces how decks are built for each round. The source is
// responsible for any shuffling.
func WithDeckSource(src DeckSource) Option {
	return func(g *Game) {
		g.source = src
	}
}

// WithLogger sets the logger used for round events.
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		g.logger = logger.WithPrefix("game")
	}
}

// ShuffledDeck returns a DeckSource producing fresh shuffled 52-card decks.
// A nil rng uses the global source.
func ShuffledDeck(rng *rand.Rand) DeckSource {
	return func() *deck.Deck {
		d := deck.New(deck.WithRand(rng))
		d.Shuffle()
		return d
	}
}

// New creates a game with no round dealt yet.
func New(opts ...Option) *Game {
	g := &Game{
		deck:   deck.New(),
		source: ShuffledDeck(nil),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start discards any previous round, builds and shuffles a fresh deck and
// deals two cards to the player then two to the dealer.
func (g *Game) Start() (State, error) {
	g.deck = g.source()
	g.player = Hand{}
	g.dealer = Hand{}
	g.gameOver = false
	g.playerStuck = false
	g.started = false

	for _, h := range []*Hand{&g.player, &g.player, &g.dealer, &g.dealer} {
		if err := g.draw(h); err != nil {
			return State{}, fmt.Errorf("dealing: %w", err)
		}
	}
	g.started = true

	g.logger.Debug("Round started",
		"player", g.player.Cards(),
		"player_value", g.player.Value(),
		"deck", g.deck.Len())
	return g.Snapshot(), nil
}

// PlayerHit draws one card for the player. Hitting before a round, after
// standing or after the round is over returns StatusError and leaves the
// game unchanged.
func (g *Game) PlayerHit() HitResult {
	if !g.started {
		return HitResult{Status: StatusError, Message: MsgNotStarted}
	}
	if g.playerStuck || g.gameOver {
		return HitResult{Status: StatusError, Message: MsgCannotHit}
	}
	if err := g.draw(&g.player); err != nil {
		g.logger.Warn("Player hit failed", "error", err)
		return HitResult{Status: StatusError, Message: MsgDeckEmpty}
	}

	if g.player.IsBusted() {
		g.gameOver = true
		g.logger.Debug("Player busted", "value", g.player.Value())
		return HitResult{Status: StatusBusted, Message: MsgPlayerBust, Hand: g.player.Cards()}
	}
	g.logger.Debug("Player hit", "value", g.player.Value())
	return HitResult{Status: StatusSuccess, Hand: g.player.Cards()}
}

// PlayerStand ends the player's turn, plays out the dealer and returns the
// adjudicated outcome. It returns ErrRoundOver if the round has already
// finished.
func (g *Game) PlayerStand() (Outcome, error) {
	if !g.started {
		return Outcome{}, ErrNotStarted
	}
	if g.gameOver {
		return Outcome{}, ErrRoundOver
	}

	g.playerStuck = true
	if err := g.dealerTurn(); err != nil {
		return Outcome{}, fmt.Errorf("dealer turn: %w", err)
	}
	g.gameOver = true

	out := g.Adjudicate()
	g.logger.Debug("Round over",
		"status", out.Status,
		"player_value", out.PlayerValue,
		"dealer_value", out.DealerValue)
	return out, nil
}

// dealerTurn draws for the dealer until the total reaches DealerStandsOn.
func (g *Game) dealerTurn() error {
	for g.dealer.Value() < DealerStandsOn {
		if err := g.draw(&g.dealer); err != nil {
			return err
		}
	}
	if g.dealer.IsBusted() {
		g.gameOver = true
	}
	return nil
}

// Adjudicate compares the current hands, see the package-level Adjudicate.
func (g *Game) Adjudicate() Outcome {
	return Adjudicate(g.player.cards, g.dealer.cards)
}

// Snapshot returns the player's view of the game. Until the round is over
// only the dealer's first card is visible and the dealer total is hidden.
func (g *Game) Snapshot() State {
	s := State{
		PlayerHand:  g.player.Cards(),
		PlayerValue: g.player.Value(),
		GameOver:    g.gameOver,
		PlayerStuck: g.playerStuck,
		Phase:       g.Phase(),
	}

	if g.gameOver {
		s.DealerHand = DealerView{Cards: g.dealer.Cards()}
		s.DealerValue = KnownTotal(g.dealer.Value())
		return s
	}

	s.DealerValue = HiddenTotal()
	s.DealerHand = DealerView{Cards: []deck.Card{}}
	if g.dealer.Len() > 0 {
		s.DealerHand = DealerView{
			Cards:  []deck.Card{g.dealer.cards[0]},
			Hidden: g.dealer.Len() - 1,
		}
	}
	return s
}

// Phase reports where the game is in its round lifecycle.
func (g *Game) Phase() Phase {
	switch {
	case !g.started:
		return PhaseNotStarted
	case g.gameOver:
		return PhaseRoundOver
	default:
		return PhaseInProgress
	}
}

// GameOver reports whether the current round has finished.
func (g *Game) GameOver() bool { return g.gameOver }

// PlayerStuck reports whether the player has stood this round.
func (g *Game) PlayerStuck() bool { return g.playerStuck }

// PlayerHand returns a copy of the player's cards.
func (g *Game) PlayerHand() []deck.Card { return g.player.Cards() }

// DealerHand returns a copy of all the dealer's cards, including the hole card.
func (g *Game) DealerHand() []deck.Card { return g.dealer.Cards() }

// CardsRemaining returns how many cards are left in the deck.
func (g *Game) CardsRemaining() int { return g.deck.Len() }

func (g *Game) draw(h *Hand) error {
	c, err := g.deck.DrawTop()
	if err != nil {
		return err
	}
	h.Add(c)
	return nil
}
