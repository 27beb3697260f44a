package card

import "errors"

var (
	ErrNotFound        = errors.New("game not found")
	ErrConflict        = errors.New("game was modified concurrently")
	ErrUnavailable     = errors.New("game is not available to join")
	ErrUnauthenticated = errors.New("sign in to join a game")
	ErrJoinInProgress  = errors.New("join already in progress")
)
