package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gameboard/backend/internal/card"
	"gameboard/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameFilter narrows a game listing.
type GameFilter struct {
	GameType string
	OpenOnly bool
	Search   string
}

// GameRepository stores game documents in the games table. It implements
// card.Store.
type GameRepository struct {
	db *gorm.DB
}

var _ card.Store = (*GameRepository)(nil)

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Get reads one game by id.
func (r *GameRepository) Get(ctx context.Context, id string) (models.Game, error) {
	var game models.Game
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Game{}, card.ErrNotFound
		}
		return models.Game{}, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	return game, nil
}

// Create stores a new game with a fresh id at version 1.
func (r *GameRepository) Create(ctx context.Context, g models.Game) (models.Game, error) {
	g.ID = uuid.NewString()
	g.Version = 1
	if g.JoinedPlayers == nil {
		g.JoinedPlayers = []string{}
	}
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		return models.Game{}, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

// Replace overwrites every field of the stored game, but only if its version
// is still expectedVersion.
func (r *GameRepository) Replace(ctx context.Context, g models.Game, expectedVersion int64) (models.Game, error) {
	next := g.Clone()
	next.Version = expectedVersion + 1

	res := r.db.WithContext(ctx).
		Model(&next).
		Select("*").
		Omit("id", "created_at").
		Where("version = ?", expectedVersion).
		Updates(&next)
	if res.Error != nil {
		return models.Game{}, fmt.Errorf("failed to update game %s: %w", g.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", g.ID).Count(&n).Error; err != nil {
			return models.Game{}, fmt.Errorf("failed to check game %s: %w", g.ID, err)
		}
		if n == 0 {
			return models.Game{}, card.ErrNotFound
		}
		return models.Game{}, card.ErrConflict
	}
	return next, nil
}

// List returns one page of games ordered by date.
func (r *GameRepository) List(ctx context.Context, filter GameFilter, page, limit int) (*Page[models.Game], error) {
	query := r.db.WithContext(ctx).Model(&models.Game{})

	if filter.GameType != "" {
		query = query.Where("game_type = ?", filter.GameType)
	}
	if filter.OpenOnly {
		query = query.Where("players_needed > 0")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	result, err := Paginate[models.Game](query.Order("date ASC").Order("id ASC"), page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return result, nil
}
