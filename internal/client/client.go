// Package client plays pontoon against a remote server over WebSocket.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/server"
	"github.com/lox/pontoon/internal/session"
)

var (
	// ErrClosed is returned for requests made after the connection dropped.
	ErrClosed = errors.New("connection closed")

	// ErrNoGame is returned when Hit, Stand or State is called before Start.
	ErrNoGame = errors.New("no game started")
)

// Error is an error reply from the server.
type Error struct {
	Code   string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error %s: %s", e.Code, e.Detail)
}

// Is maps error codes back onto the sentinel errors they came from.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case server.CodeRoundOver:
		return target == game.ErrRoundOver
	case server.CodeNotStarted:
		return target == game.ErrNotStarted
	case server.CodeNotFound:
		return target == session.ErrNotFound
	case server.CodeTableFull:
		return target == session.ErrTableFull
	}
	return false
}

// Client is a WebSocket connection to a pontoon server. It plays one game at
// a time: Start begins a new game and later calls act on it. Requests are
// safe for concurrent use.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[string]chan *server.Message
	gameID  string
	closed  bool
	done    chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger.WithPrefix("client") }
}

// Dial connects to serverURL. http and https URLs are converted to ws and wss
// and a missing path defaults to /ws.
func Dial(ctx context.Context, serverURL string, opts ...Option) (*Client, error) {
	u, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		logger:  log.New(io.Discard),
		pending: make(map[string]chan *server.Message),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("Connecting to server", "url", u)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	go c.readMessages()
	return c, nil
}

func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

// GameID returns the ID of the current game, if any.
func (c *Client) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// Start begins a new game.
func (c *Client) Start(ctx context.Context) (game.State, error) {
	var resp server.StartResponse
	if err := c.call(ctx, server.MessageTypeStart, "", &resp); err != nil {
		return game.State{}, err
	}
	c.mu.Lock()
	c.gameID = resp.GameID
	c.mu.Unlock()
	return resp.GameState, nil
}

// Hit draws a card for the player.
func (c *Client) Hit(ctx context.Context) (game.HitResult, game.State, error) {
	id, err := c.currentGame()
	if err != nil {
		return game.HitResult{}, game.State{}, err
	}
	var resp server.HitResponse
	if err := c.call(ctx, server.MessageTypeHit, id, &resp); err != nil {
		return game.HitResult{}, game.State{}, err
	}
	return resp.Result, resp.GameState, nil
}

// Stand ends the player's turn and returns the round outcome.
func (c *Client) Stand(ctx context.Context) (game.Outcome, game.State, error) {
	id, err := c.currentGame()
	if err != nil {
		return game.Outcome{}, game.State{}, err
	}
	var resp server.StandResponse
	if err := c.call(ctx, server.MessageTypeStand, id, &resp); err != nil {
		return game.Outcome{}, game.State{}, err
	}
	return resp.Result, resp.GameState, nil
}

// State fetches the player's view of the current game.
func (c *Client) State(ctx context.Context) (game.State, error) {
	id, err := c.currentGame()
	if err != nil {
		return game.State{}, err
	}
	var state game.State
	if err := c.call(ctx, server.MessageTypeState, id, &state); err != nil {
		return game.State{}, err
	}
	return state, nil
}

func (c *Client) currentGame() (string, error) {
	id := c.GameID()
	if id == "" {
		return "", ErrNoGame
	}
	return id, nil
}

// call sends a request and waits for the reply carrying the same request ID.
func (c *Client) call(ctx context.Context, t server.MessageType, gameID string, out any) error {
	reply := make(chan *server.Message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.nextID++
	requestID := strconv.FormatUint(c.nextID, 10)
	c.pending[requestID] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(&server.Message{Type: t, RequestID: requestID, GameID: gameID})
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("sending %s: %w", t, err)
	}

	select {
	case msg, ok := <-reply:
		if !ok {
			return ErrClosed
		}
		if msg.Type == server.MessageTypeError {
			var body server.ErrorResponse
			if err := json.Unmarshal(msg.Data, &body); err != nil {
				return fmt.Errorf("decoding error reply: %w", err)
			}
			return &Error{Code: body.Code, Detail: body.Detail}
		}
		if err := json.Unmarshal(msg.Data, out); err != nil {
			return fmt.Errorf("decoding %s reply: %w", msg.Type, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readMessages() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping unsolicited message", "type", msg.Type, "request_id", msg.RequestID)
			continue
		}
		select {
		case ch <- &msg:
		default:
			c.logger.Debug("Dropping duplicate reply", "request_id", msg.RequestID)
		}
	}
}
