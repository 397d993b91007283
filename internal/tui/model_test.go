package tui

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pontoon/internal/deck"
	"github.com/lox/pontoon/internal/game"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func stackedTable(draws string) *LocalTable {
	return NewLocalTable(game.New(game.WithDeckSource(func() *deck.Deck {
		cards := deck.MustParseCards(draws)
		slices.Reverse(cards)
		return deck.FromCards(cards)
	})))
}

// run executes cmd synchronously and feeds its message back to the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func press(t *testing.T, m *Model, k string) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	return cmd
}

func newModel(t *testing.T, draws string) *Model {
	t.Helper()
	m := NewModel(context.Background(), stackedTable(draws))
	run(t, m, m.Init())
	return m
}

func TestInitialDealHidesHoleCard(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ 7♦ 9♣ 8♥")

	view := m.View()
	assert.Contains(t, view, "[10♠ 7♦]  17")
	assert.Contains(t, view, "[9♣ ??]  ?")
	assert.NotContains(t, view, "8♥")
	assert.Contains(t, view, "hit")
}

func TestHitThenStand(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ 2♦ 9♣ 8♥ 5♠")

	run(t, m, press(t, m, "h"))
	assert.Equal(t, 17, m.state.PlayerValue)
	assert.Contains(t, m.View(), "Hit: 5♠ (17)")

	run(t, m, press(t, m, "s"))
	assert.True(t, m.state.GameOver)
	assert.Equal(t, game.StatusTie, m.status)

	view := m.View()
	assert.Contains(t, view, game.MsgTie)
	assert.Contains(t, view, "[9♣ 8♥]  17")
}

func TestBustEndsRound(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ 6♦ 9♣ 8♥ K♠")

	run(t, m, press(t, m, "h"))
	assert.True(t, m.state.GameOver)
	assert.Equal(t, game.MsgPlayerBust, m.banner)
	assert.Equal(t, game.StatusLoss, m.status)

	// No further actions once the round is over
	assert.Nil(t, press(t, m, "h"))
	assert.Nil(t, press(t, m, "s"))
}

func TestNewRound(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ K♦ 9♣ 8♥")

	run(t, m, press(t, m, "s"))
	assert.Equal(t, game.StatusWin, m.status)

	run(t, m, press(t, m, "n"))
	assert.False(t, m.state.GameOver)
	assert.Empty(t, m.banner)
	assert.Equal(t, 20, m.state.PlayerValue)
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ K♦ 9♣ 8♥")

	cmd := press(t, m, "h")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Nil(t, press(t, m, "s"))
	assert.Nil(t, press(t, m, "n"))
	m.Update(cmd())
	assert.False(t, m.busy)
}

func TestQuit(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ K♦ 9♣ 8♥")

	cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

type failingTable struct {
	*LocalTable
}

func (failingTable) Stand(context.Context) (game.Outcome, game.State, error) {
	return game.Outcome{}, game.State{}, errors.New("connection closed")
}

func TestErrorShownInBanner(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), failingTable{stackedTable("10♠ K♦ 9♣ 8♥")})
	run(t, m, m.Init())

	run(t, m, press(t, m, "s"))
	assert.Equal(t, game.StatusError, m.status)
	assert.Contains(t, m.View(), "connection closed")
	assert.Equal(t, 20, m.state.PlayerValue, "state is kept on error")
}

func TestWindowResize(t *testing.T) {
	t.Parallel()
	m := newModel(t, "10♠ K♦ 9♣ 8♥")

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 96, m.log.Width)
	assert.Equal(t, 100, m.help.Width)
}

func TestLocalTable(t *testing.T) {
	t.Parallel()
	table := stackedTable("10♠ K♦ 9♣ 8♥")
	ctx := context.Background()

	_, _, err := table.Stand(ctx)
	assert.ErrorIs(t, err, game.ErrNotStarted)

	state, err := table.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, state.PlayerValue)

	out, state, err := table.Stand(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWin, out.Status)
	assert.True(t, state.GameOver)

	again, err := table.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, again)
}
