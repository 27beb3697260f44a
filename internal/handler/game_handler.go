package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"gameboard/backend/internal/auth"
	"gameboard/backend/internal/card"
	"gameboard/backend/internal/database"
	"gameboard/backend/internal/events"
	"gameboard/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// GameInput is the body of a create-game request.
type GameInput struct {
	Title         string    `json:"title" binding:"required,notblank" example:"Sunday pickup"`
	Description   string    `json:"description" example:"5v5, bring a light and a dark shirt"`
	GameType      string    `json:"game_type" binding:"required,notblank" example:"soccer"`
	PlayersNeeded int       `json:"players_needed" binding:"required,min=1,max=100" example:"4"`
	RentalID      string    `json:"rental_id" example:"field-3 @ Riverside Park"`
	Date          time.Time `json:"date" binding:"required" example:"2026-10-25T10:00:00Z"`
	Duration      int       `json:"duration" binding:"min=0" example:"90"`
}

// JoinResponse is the outcome of a join attempt: the acknowledgment to show
// and the card as the caller now sees it.
type JoinResponse struct {
	Notice card.Notice `json:"notice"`
	Card   card.View   `json:"card"`
	Error  string      `json:"error,omitempty"`
}

// PaginatedCardResponse documents the paginated card list.
type PaginatedCardResponse struct {
	Data []card.View    `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// endregion

// region --- Game Handlers ---

// GetGames godoc
// @Summary      List game cards
// @Description  Retrieves a paginated list of games rendered as cards for the caller.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        q         query  string  false  "Search query for game title"
// @Param        game_type query  string  false  "Filter by game type"
// @Param        open_only query  bool    false  "Only games with open slots"
// @Param        page      query  int     false  "Page number" default(1)
// @Param        limit     query  int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedCardResponse
// @Failure      500 {object} ErrorResponse
// @Router       /games [get]
func (h *Handler) GetGames(c *gin.Context) {
	id := auth.IdentityFrom(c)
	page, limit := pageParams(c)
	openOnly, _ := strconv.ParseBool(c.Query("open_only"))

	filter := database.GameFilter{
		GameType: c.Query("game_type"),
		OpenOnly: openOnly,
		Search:   c.Query("q"),
	}

	result, err := h.games.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		zap.L().Error("Failed to list games", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	views := make([]card.View, 0, len(result.Items))
	for i := range result.Items {
		views = append(views, h.cards.Observe(&result.Items[i]).View(id))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(views, result.TotalItems, page, limit))
}

// GetGameByID godoc
// @Summary      Get a single game card
// @Description  Retrieves one game rendered as a card for the caller.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200 {object} card.View
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func (h *Handler) GetGameByID(c *gin.Context) {
	crd, err := h.cards.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
		return
	}

	c.JSON(http.StatusOK, crd.View(auth.IdentityFrom(c)))
}

// CreateGame godoc
// @Summary      Create a new game
// @Description  Creates a game organized by the caller.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  card.View
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /games [post]
func (h *Handler) CreateGame(c *gin.Context) {
	id := auth.IdentityFrom(c)

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.games.Create(c.Request.Context(), models.Game{
		Title:         input.Title,
		Description:   input.Description,
		GameType:      input.GameType,
		PlayersNeeded: input.PlayersNeeded,
		Creator:       id.Email,
		RentalID:      input.RentalID,
		Date:          input.Date,
		Duration:      input.Duration,
	})
	if err != nil {
		zap.L().Error("Failed to create game", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, h.cards.Observe(&game).View(id))
}

// JoinGame godoc
// @Summary      Join a game
// @Description  Claims one open slot for the caller. The write only succeeds if nobody changed the game since it was read.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200 {object} JoinResponse
// @Failure      401 {object} ErrorResponse "Sign in to join a game"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} JoinResponse "Game is full, already joined, or changed concurrently"
// @Failure      429 {object} ErrorResponse
// @Failure      500 {object} JoinResponse
// @Router       /games/{id}/join [post]
func (h *Handler) JoinGame(c *gin.Context) {
	id := auth.IdentityFrom(c)
	ctx := c.Request.Context()

	crd, err := h.cards.Load(ctx, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
		return
	}

	var notice *card.Notice
	ack := card.NotifierFunc(func(_ context.Context, n card.Notice) {
		notice = &n
	})

	stored, err := crd.Join(ctx, id, h.games, ack)
	if err != nil {
		if notice == nil {
			// rejected before anything was written
			c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
			return
		}
		c.JSON(statusFor(err), JoinResponse{
			Notice: *notice,
			Card:   crd.View(id),
			Error:  messageFor(err),
		})
		return
	}

	if err := h.publisher.Publish(ctx, events.PlayerJoined(stored, id.Email)); err != nil {
		zap.L().Warn("Failed to publish join event", zap.String("game_id", stored.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, JoinResponse{
		Notice: *notice,
		Card:   crd.View(id),
	})
}

// StreamGameEvents godoc
// @Summary      Stream card updates
// @Description  Server-sent events for one game; an event is emitted every time a player joins.
// @Tags         games
// @Produce      text/event-stream
// @Param        id path string true "Game ID"
// @Success      200 {string} string "event stream"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/events [get]
func (h *Handler) StreamGameEvents(c *gin.Context) {
	gameID := c.Param("id")
	if _, err := h.games.Get(c.Request.Context(), gameID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
		return
	}

	client := h.hub.Subscribe(gameID)
	defer h.hub.Unsubscribe(gameID, client)

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-done:
			return false
		}
	})
}

// endregion
