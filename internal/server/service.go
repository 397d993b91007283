package server

import (
	"errors"
	"net/http"

	"github.com/lox/pontoon/internal/game"
	"github.com/lox/pontoon/internal/session"
)

// Error codes reported to clients.
const (
	CodeNotFound    = "not_found"
	CodeRoundOver   = "round_over"
	CodeNotStarted  = "not_started"
	CodeTableFull   = "table_full"
	CodeBadRequest  = "bad_request"
	CodeInternal    = "internal"
	CodeUnknownType = "unknown_message_type"
)

const (
	detailInvalidID  = "Invalid game_id"
	detailRoundOver  = "The game is over"
	detailNotStarted = "The round has not started"
	detailTableFull  = "Too many active games, try again later"
)

// service runs the four game operations against the session table. It is
// shared by the HTTP handlers and WebSocket connections.
type service struct {
	sessions *session.Table
}

func (s *service) start() (StartResponse, error) {
	id, state, err := s.sessions.Create()
	if err != nil {
		return StartResponse{}, err
	}
	return StartResponse{GameID: id, GameState: state}, nil
}

func (s *service) hit(id string) (HitResponse, error) {
	var resp HitResponse
	err := s.sessions.Do(id, func(g *game.Game) error {
		resp.Result = g.PlayerHit()
		resp.GameState = g.Snapshot()
		return nil
	})
	return resp, err
}

func (s *service) stand(id string) (StandResponse, error) {
	var resp StandResponse
	err := s.sessions.Do(id, func(g *game.Game) error {
		out, err := g.PlayerStand()
		if err != nil {
			return err
		}
		resp.Result = out
		resp.GameState = g.Snapshot()
		return nil
	})
	return resp, err
}

func (s *service) state(id string) (game.State, error) {
	var state game.State
	err := s.sessions.Do(id, func(g *game.Game) error {
		state = g.Snapshot()
		return nil
	})
	return state, err
}

// classify maps an operation error onto an HTTP status and client-facing body.
func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: detailInvalidID, Code: CodeNotFound}
	case errors.Is(err, game.ErrRoundOver):
		return http.StatusConflict, ErrorResponse{Detail: detailRoundOver, Code: CodeRoundOver}
	case errors.Is(err, game.ErrNotStarted):
		return http.StatusConflict, ErrorResponse{Detail: detailNotStarted, Code: CodeNotStarted}
	case errors.Is(err, session.ErrTableFull):
		return http.StatusServiceUnavailable, ErrorResponse{Detail: detailTableFull, Code: CodeTableFull}
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error", Code: CodeInternal}
	}
}
