package game

import "errors"

var (
	// ErrRoundOver is returned when standing on a round that has already finished.
	ErrRoundOver = errors.New("the game is over")

	// ErrNotStarted is returned when standing before any round was dealt.
	ErrNotStarted = errors.New("round has not started")
)
