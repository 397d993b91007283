// Package testing runs full games through a real server, WebSocket client and
// terminal UI.
package testing

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/pontoon/internal/client"
	"github.com/lox/pontoon/internal/deck"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/randutil"
	"github.com/lox/pontoon/internal/server"
	"github.com/lox/pontoon/internal/session"
	"github.com/lox/pontoon/internal/tui"
)

// Test constants
const (
	ServerReadyTimeout = 5 * time.Second
	RequestTimeout     = 5 * time.Second
	DefaultSeed        = 12345
)

// TestScenario is a scripted round played through the UI.
type TestScenario struct {
	Name         string
	Draws        string   // Cards in deal order; empty uses Seed
	Seed         int64    // Used when Draws is empty
	Keys         []string // Keys pressed in order, e.g. "h", "s", "n"
	ExpectedView []string // Content expected in the final view
}

// ServerOptions configures StartTestServer.
type ServerOptions struct {
	Draws       string
	Seed        int64
	TTL         time.Duration
	MaxSessions int
	Clock       quartz.Clock
}

// TestServer is a pontoon server listening on a loopback port.
type TestServer struct {
	Server   *server.Server
	Sessions *session.Table
	URL      string

	done     chan struct{}
	serveErr error
}

// StartTestServer serves games on 127.0.0.1 and stops the server when the
// test ends.
func StartTestServer(t *testing.T, opts ServerOptions) *TestServer {
	t.Helper()

	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	tableOpts := []session.Option{session.WithLogger(logger)}
	if opts.Clock != nil {
		tableOpts = append(tableOpts, session.WithClock(opts.Clock))
	}
	sessions := session.NewTable(
		session.Config{TTL: opts.TTL, MaxSessions: opts.MaxSessions},
		newGameFunc(opts),
		tableOpts...,
	)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ts := &TestServer{
		Server:   server.NewServer(sessions, logger),
		Sessions: sessions,
		URL:      "http://" + listener.Addr().String(),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(ts.done)
		ts.serveErr = ts.Server.Serve(listener)
	}()
	waitForServerReady(t, ts.URL, ServerReadyTimeout)

	t.Cleanup(ts.Stop)
	return ts
}

// Stop shuts the server down and waits for Serve to return.
func (s *TestServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()
	_ = s.Server.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
	}
}

// Err returns the error Serve exited with, ignoring a normal shutdown.
func (s *TestServer) Err() error {
	select {
	case <-s.done:
	default:
		return nil
	}
	if errors.Is(s.serveErr, http.ErrServerClosed) {
		return nil
	}
	return s.serveErr
}

func newGameFunc(opts ServerOptions) session.NewGameFunc {
	if opts.Draws != "" {
		return func() *game.Game {
			return game.New(game.WithDeckSource(func() *deck.Deck {
				cards := deck.MustParseCards(opts.Draws)
				slices.Reverse(cards)
				return deck.FromCards(cards)
			}))
		}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	return func() *game.Game {
		return game.New(game.WithRand(randutil.New(seed)))
	}
}

func waitForServerReady(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, timeout, 20*time.Millisecond, "server at %s did not become ready", url)
}

// TestClient drives the terminal UI over a real WebSocket connection. Key
// presses run their commands synchronously so assertions need no sleeps.
type TestClient struct {
	Client *client.Client
	Model  *tui.Model
	t      *testing.T
}

// Connect dials the server and deals the first round.
func (s *TestServer) Connect(t *testing.T) *TestClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()
	c, err := client.Dial(ctx, s.URL)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = c.Close() })

	model := tui.NewModel(context.Background(), c)
	tc := &TestClient{Client: c, Model: model, t: t}
	tc.run(model.Init())
	return tc
}

// Press sends each key to the UI in turn.
func (c *TestClient) Press(keys ...string) {
	c.t.Helper()
	for _, k := range keys {
		_, cmd := c.Model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		c.run(cmd)
	}
}

// View returns the rendered UI.
func (c *TestClient) View() string {
	return c.Model.View()
}

// AssertView checks that every expected string appears in the view.
func (c *TestClient) AssertView(expected ...string) {
	c.t.Helper()
	view := c.View()
	for _, want := range expected {
		require.Contains(c.t, view, want, "expected view content not found: %s\nActual view:\n%s", want, view)
	}
}

func (c *TestClient) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	c.Model.Update(cmd())
}

// RunScenario plays a scenario against a fresh server.
func RunScenario(t *testing.T, sc TestScenario) {
	t.Helper()
	srv := StartTestServer(t, ServerOptions{Draws: sc.Draws, Seed: sc.Seed})
	c := srv.Connect(t)
	c.Press(sc.Keys...)
	c.AssertView(sc.ExpectedView...)
}
