package handler

import (
	"context"
	"errors"
	"net/http"

	"gameboard/backend/internal/card"
	"gameboard/backend/internal/database"
	"gameboard/backend/internal/events"
	"gameboard/backend/internal/hub"
	"gameboard/backend/internal/models"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// GameStore is the game persistence the handlers need.
// *database.GameRepository implements it.
type GameStore interface {
	card.Store
	Create(ctx context.Context, g models.Game) (models.Game, error)
	List(ctx context.Context, filter database.GameFilter, page, limit int) (*database.Page[models.Game], error)
}

// Handler serves the game board API.
type Handler struct {
	games     GameStore
	users     *database.UserRepository
	cards     *card.Registry
	hub       *hub.Hub
	publisher events.Publisher
	jwtSecret string
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Games     GameStore
	Users     *database.UserRepository
	Cards     *card.Registry
	Hub       *hub.Hub
	Publisher events.Publisher
	JWTSecret string
}

func New(d Deps) *Handler {
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.LocalPublisher{Hub: d.Hub}
	}
	return &Handler{
		games:     d.Games,
		users:     d.Users,
		cards:     d.Cards,
		hub:       d.Hub,
		publisher: publisher,
		jwtSecret: d.JWTSecret,
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, card.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, card.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, card.ErrConflict),
		errors.Is(err, card.ErrUnavailable),
		errors.Is(err, card.ErrJoinInProgress):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing text for err.
func messageFor(err error) string {
	for _, known := range []error{
		card.ErrNotFound,
		card.ErrUnauthenticated,
		card.ErrConflict,
		card.ErrUnavailable,
		card.ErrJoinInProgress,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Game store timed out"
	}
	return "Internal server error"
}
