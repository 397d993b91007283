// Package tui is an interactive terminal table for a single player.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pontoon/internal/deck"
	"github.com/lox/pontoon/internal/game"
)

const hiddenCard = "??"

type startedMsg struct {
	state game.State
}

type hitMsg struct {
	result game.HitResult
	state  game.State
}

type standMsg struct {
	outcome game.Outcome
	state   game.State
}

type errMsg struct {
	err error
}

// Model is the Bubble Tea model for a pontoon table.
type Model struct {
	ctx   context.Context
	table Table

	state    game.State
	dealt    bool
	busy     bool
	banner   string
	status   game.Status
	quitting bool

	history []string
	log     viewport.Model
	help    help.Model
	keys    keyMap
	styles  styles

	width int
}

// NewModel returns a model that deals its first round on Init.
func NewModel(ctx context.Context, table Table) *Model {
	return &Model{
		ctx:    ctx,
		table:  table,
		log:    viewport.New(60, 6),
		help:   help.New(),
		keys:   defaultKeyMap(),
		styles: defaultStyles(),
	}
}

// Run plays until the user quits or ctx is cancelled.
func Run(ctx context.Context, table Table, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(ctx, table), opts...).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	m.busy = true
	return m.start()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.log.Width = max(msg.Width-4, 20)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startedMsg:
		m.busy = false
		m.dealt = true
		m.state = msg.state
		m.banner, m.status = "", ""
		m.addLog(fmt.Sprintf("New round: you have %s (%d)", m.plainCards(msg.state.PlayerHand), msg.state.PlayerValue))

	case hitMsg:
		m.busy = false
		m.state = msg.state
		switch msg.result.Status {
		case game.StatusSuccess:
			m.addLog(fmt.Sprintf("Hit: %s (%d)", m.lastCard(), msg.state.PlayerValue))
		case game.StatusBusted:
			m.addLog(fmt.Sprintf("Hit: %s (%d)", m.lastCard(), msg.state.PlayerValue))
			m.banner, m.status = msg.result.Message, game.StatusLoss
			m.addLog(msg.result.Message)
		default:
			m.banner, m.status = msg.result.Message, game.StatusError
		}

	case standMsg:
		m.busy = false
		m.state = msg.state
		m.banner, m.status = msg.outcome.Message, msg.outcome.Status
		m.addLog(fmt.Sprintf("You %d, dealer %d: %s",
			msg.outcome.PlayerValue, msg.outcome.DealerValue, msg.outcome.Message))

	case errMsg:
		m.busy = false
		m.banner, m.status = msg.err.Error(), game.StatusError
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.New):
		m.busy = true
		return m, m.start()
	case key.Matches(msg, m.keys.Hit) && m.canAct():
		m.busy = true
		return m, m.hit()
	case key.Matches(msg, m.keys.Stand) && m.canAct():
		m.busy = true
		return m, m.stand()
	}
	return m, nil
}

func (m *Model) canAct() bool {
	return m.dealt && !m.state.GameOver && !m.state.PlayerStuck
}

func (m *Model) start() tea.Cmd {
	ctx, table := m.ctx, m.table
	return func() tea.Msg {
		state, err := table.Start(ctx)
		if err != nil {
			return errMsg{err}
		}
		return startedMsg{state}
	}
}

func (m *Model) hit() tea.Cmd {
	ctx, table := m.ctx, m.table
	return func() tea.Msg {
		res, state, err := table.Hit(ctx)
		if err != nil {
			return errMsg{err}
		}
		return hitMsg{res, state}
	}
}

func (m *Model) stand() tea.Cmd {
	ctx, table := m.ctx, m.table
	return func() tea.Msg {
		out, state, err := table.Stand(ctx)
		if err != nil {
			return errMsg{err}
		}
		return standMsg{out, state}
	}
}

func (m *Model) addLog(line string) {
	m.history = append(m.history, line)
	m.log.SetContent(strings.Join(m.history, "\n"))
	m.log.GotoBottom()
}

func (m *Model) lastCard() string {
	if len(m.state.PlayerHand) == 0 {
		return ""
	}
	return m.state.PlayerHand[len(m.state.PlayerHand)-1].String()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Pontoon"))
	b.WriteString("\n\n")

	if !m.dealt {
		b.WriteString(m.styles.Info.Render("Dealing..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderDealer())
		b.WriteString("\n")
		b.WriteString(m.renderPlayer())
		b.WriteString("\n")
	}

	if m.banner != "" {
		b.WriteString("\n")
		b.WriteString(m.renderBanner())
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Pane.Render(m.log.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderDealer() string {
	cards := m.formatCards(m.state.DealerHand.Cards)
	for range m.state.DealerHand.Hidden {
		cards = append(cards, m.styles.Hidden.Render(hiddenCard))
	}
	total := "?"
	if v, ok := m.state.DealerValue.Value(); ok {
		total = fmt.Sprint(v)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Label.Render("Dealer"),
		"["+strings.Join(cards, " ")+"]  "+total)
}

func (m *Model) renderPlayer() string {
	cards := m.formatCards(m.state.PlayerHand)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Label.Render("You"),
		fmt.Sprintf("[%s]  %d", strings.Join(cards, " "), m.state.PlayerValue))
}

func (m *Model) renderBanner() string {
	switch m.status {
	case game.StatusWin:
		return m.styles.Win.Render(m.banner)
	case game.StatusLoss:
		return m.styles.Loss.Render(m.banner)
	case game.StatusTie:
		return m.styles.Tie.Render(m.banner)
	default:
		return m.styles.Error.Render(m.banner)
	}
}

func (m *Model) formatCards(cards []deck.Card) []string {
	out := make([]string, 0, len(cards)+1)
	for _, c := range cards {
		if c.Suit.IsRed() {
			out = append(out, m.styles.RedCard.Render(c.String()))
		} else {
			out = append(out, m.styles.BlackCard.Render(c.String()))
		}
	}
	return out
}

func (m *Model) plainCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
