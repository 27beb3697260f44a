// Package card holds the per-game state cell shown to users: a local copy of
// a game record, the availability rule, and the join transition.
package card

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gameboard/backend/internal/auth"
	"gameboard/backend/internal/models"

	"go.uber.org/zap"
)

// State is the interaction state of a card for one viewer.
type State string

const (
	StateAvailable   State = "available"
	StateUnavailable State = "unavailable"
	StateJoining     State = "joining"
)

const (
	labelJoin        = "Join Game"
	labelUnavailable = "Not Available"
)

// Options control how a card treats edge cases.
type Options struct {
	// RequireIdentity rejects joins from signed-out callers. When false a
	// signed-out join consumes a slot without recording anyone.
	RequireIdentity bool
	// JoinTimeout bounds the store write. Zero means the caller's context only.
	JoinTimeout time.Duration
	// CacheSize caps how many cards a Registry keeps. Zero means no cap.
	CacheSize int
}

// View is the render model of a card for one viewer.
type View struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Creator       string    `json:"creator"`
	GameType      string    `json:"game_type"`
	PlayersNeeded int       `json:"players_needed"`
	WhenAndWhere  string    `json:"when_and_where"`
	Date          time.Time `json:"date"`
	Duration      int       `json:"duration"`
	JoinedPlayers []string  `json:"joined_players"`
	State         State     `json:"state"`
	ActionLabel   string    `json:"action_label"`
	ActionEnabled bool      `json:"action_enabled"`
}

// Card is a locally owned copy of a game record. It is safe for concurrent
// use. A join in flight blocks only further joins by the same identity.
type Card struct {
	opts Options

	mu       sync.Mutex
	snapshot *models.Game
	game     models.Game
	joining  map[string]bool
}

// New returns a card mirroring snapshot.
func New(snapshot *models.Game, opts Options) *Card {
	c := &Card{opts: opts, joining: make(map[string]bool)}
	c.Sync(snapshot)
	return c
}

// Sync replaces the local copy with snapshot when it is a different object
// from the last one seen. Unsaved local state is discarded. It reports whether
// the copy was replaced.
func (c *Card) Sync(snapshot *models.Game) bool {
	if snapshot == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == snapshot {
		return false
	}
	c.snapshot = snapshot
	c.game = snapshot.Clone()
	return true
}

// Game returns a copy of the local record.
func (c *Card) Game() models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game.Clone()
}

// Available reports whether id may join right now.
func (c *Card) Available(id auth.Identity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Available(c.game, id.Email)
}

// State returns the interaction state for id.
func (c *Card) State(id auth.Identity) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(id)
}

func (c *Card) stateLocked(id auth.Identity) State {
	switch {
	case c.joining[id.Email]:
		return StateJoining
	case Available(c.game, id.Email):
		return StateAvailable
	default:
		return StateUnavailable
	}
}

// View renders the card for id.
func (c *Card) View(id auth.Identity) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.game
	state := c.stateLocked(id)
	v := View{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		Creator:       g.Creator,
		GameType:      g.GameType,
		PlayersNeeded: g.PlayersNeeded,
		WhenAndWhere:  g.RentalID,
		Date:          g.Date,
		Duration:      g.Duration,
		JoinedPlayers: append([]string{}, g.JoinedPlayers...),
		State:         state,
		ActionLabel:   labelUnavailable,
	}
	if state == StateAvailable {
		v.ActionLabel = labelJoin
		v.ActionEnabled = true
	}
	return v
}

// Join claims an open slot for id and persists the new record with a
// conditional overwrite. The notifier is called with the outcome before Join
// returns. On any failure the local record is left untouched.
func (c *Card) Join(ctx context.Context, id auth.Identity, store Store, n Notifier) (models.Game, error) {
	if n == nil {
		n = Discard
	}

	c.mu.Lock()
	if c.joining[id.Email] {
		c.mu.Unlock()
		return models.Game{}, ErrJoinInProgress
	}
	if c.opts.RequireIdentity && !id.SignedIn() {
		c.mu.Unlock()
		return models.Game{}, ErrUnauthenticated
	}
	if !Available(c.game, id.Email) {
		c.mu.Unlock()
		return models.Game{}, ErrUnavailable
	}
	current := c.game.Clone()
	candidate := Apply(current, id)
	c.joining[id.Email] = true
	c.mu.Unlock()

	if c.opts.JoinTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.JoinTimeout)
		defer cancel()
	}

	stored, err := store.Replace(ctx, candidate, current.Version)

	c.mu.Lock()
	delete(c.joining, id.Email)
	if err == nil {
		c.game = stored.Clone()
	}
	c.mu.Unlock()

	if err != nil {
		zap.L().Error("Error joining game",
			zap.String("game_id", current.ID),
			zap.String("email", id.Email),
			zap.Error(err))
		n.Notify(ctx, failedNotice)
		return models.Game{}, fmt.Errorf("join game %s: %w", current.ID, err)
	}

	zap.L().Info("Player joined game",
		zap.String("game_id", stored.ID),
		zap.String("email", id.Email),
		zap.Int("players_needed", stored.PlayersNeeded))
	n.Notify(ctx, joinedNotice)
	return stored.Clone(), nil
}
