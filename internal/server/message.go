package server

import (
	"encoding/json"

	"github.com/lox/pontoon/internal/game"
)

// GameRequest identifies the session an action applies to.
type GameRequest struct {
	GameID string `json:"game_id"`
}

// StartResponse is returned when a new session is created.
type StartResponse struct {
	GameID    string     `json:"game_id"`
	GameState game.State `json:"game_state"`
}

// HitResponse pairs a hit result with the state after the hit.
type HitResponse struct {
	Result    game.HitResult `json:"result"`
	GameState game.State     `json:"game_state"`
}

// StandResponse pairs the round outcome with the final state.
type StandResponse struct {
	Result    game.Outcome `json:"result"`
	GameState game.State   `json:"game_state"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// MessageType names a WebSocket message.
type MessageType string

// Client → server
const (
	MessageTypeStart MessageType = "start"
	MessageTypeHit   MessageType = "hit"
	MessageTypeStand MessageType = "stand"
	MessageTypeState MessageType = "state"
)

// Server → client
const (
	MessageTypeStarted     MessageType = "started"
	MessageTypeHitResult   MessageType = "hit_result"
	MessageTypeStandResult MessageType = "stand_result"
	MessageTypeGameState   MessageType = "game_state"
	MessageTypeError       MessageType = "error"
)

func (t MessageType) String() string { return string(t) }

// Message is the WebSocket envelope in both directions. Replies echo the
// request's RequestID.
type Message struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	GameID    string          `json:"game_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds a message with data encoded as JSON.
func NewMessage(t MessageType, requestID string, data any) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, RequestID: requestID, Data: raw}, nil
}
