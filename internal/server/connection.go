package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is a single WebSocket client. One connection may drive any
// number of games; each request names its game_id.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	service   *service
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, svc *service, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 64),
		service: svc,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has been closed.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "game_id", msg.GameID, "request_id", msg.RequestID)

	var (
		reply MessageType
		data  any
		err   error
	)
	switch msg.Type {
	case MessageTypeStart:
		var resp StartResponse
		resp, err = c.service.start()
		reply, data = MessageTypeStarted, resp
		msg.GameID = resp.GameID
	case MessageTypeHit:
		reply = MessageTypeHitResult
		data, err = c.service.hit(msg.GameID)
	case MessageTypeStand:
		reply = MessageTypeStandResult
		data, err = c.service.stand(msg.GameID)
	case MessageTypeState:
		reply = MessageTypeGameState
		data, err = c.service.state(msg.GameID)
	default:
		c.sendError(msg, ErrorResponse{Detail: "Unknown message type: " + msg.Type.String(), Code: CodeUnknownType})
		return
	}

	if err != nil {
		_, body := classify(err)
		if body.Code == CodeInternal {
			c.logger.Error("Request failed", "type", msg.Type, "error", err)
		}
		c.sendError(msg, body)
		return
	}
	c.reply(msg, reply, data)
}

func (c *Connection) reply(req *Message, t MessageType, data any) {
	out, err := NewMessage(t, req.RequestID, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	out.GameID = req.GameID
	_ = c.SendMessage(out)
}

func (c *Connection) sendError(req *Message, body ErrorResponse) {
	c.reply(req, MessageTypeError, body)
}
