package tui

import (
	"context"

	"github.com/lox/pontoon/internal/game"
)

// Table is the game the UI plays against. It is satisfied by LocalTable and
// by *client.Client.
type Table interface {
	Start(ctx context.Context) (game.State, error)
	Hit(ctx context.Context) (game.HitResult, game.State, error)
	Stand(ctx context.Context) (game.Outcome, game.State, error)
	State(ctx context.Context) (game.State, error)
}

// LocalTable plays against an in-process engine.
type LocalTable struct {
	game *game.Game
}

// NewLocalTable wraps g.
func NewLocalTable(g *game.Game) *LocalTable {
	return &LocalTable{game: g}
}

func (t *LocalTable) Start(context.Context) (game.State, error) {
	return t.game.Start()
}

func (t *LocalTable) Hit(context.Context) (game.HitResult, game.State, error) {
	res := t.game.PlayerHit()
	return res, t.game.Snapshot(), nil
}

func (t *LocalTable) Stand(context.Context) (game.Outcome, game.State, error) {
	out, err := t.game.PlayerStand()
	if err != nil {
		return game.Outcome{}, game.State{}, err
	}
	return out, t.game.Snapshot(), nil
}

func (t *LocalTable) State(context.Context) (game.State, error) {
	return t.game.Snapshot(), nil
}
