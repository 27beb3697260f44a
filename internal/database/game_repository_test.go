package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gameboard/backend/internal/auth"
	"gameboard/backend/internal/card"
	"gameboard/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory sqlite database for one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

func newTestGame(title string, playersNeeded int, date time.Time) models.Game {
	return models.Game{
		Title:         title,
		Description:   "bring water",
		GameType:      "basketball",
		PlayersNeeded: playersNeeded,
		Creator:       "host@x.com",
		RentalID:      "court-7",
		Date:          date,
		Duration:      60,
	}
}

func TestGameRepositoryCreateAndGet(t *testing.T) {
	repo := NewGameRepository(setupTestDB(t))
	ctx := context.Background()
	date := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, newTestGame("Evening hoops", 4, date))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(1), created.Version)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening hoops", got.Title)
	assert.Equal(t, 4, got.PlayersNeeded)
	assert.Equal(t, []string{}, got.JoinedPlayers)
	assert.True(t, got.Date.Equal(date))
	assert.Equal(t, int64(1), got.Version)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, card.ErrNotFound)
}

func TestGameRepositoryReplace(t *testing.T) {
	repo := NewGameRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestGame("Evening hoops", 2, time.Now().UTC()))
	require.NoError(t, err)

	candidate := created.Clone()
	candidate.PlayersNeeded = 1
	candidate.JoinedPlayers = []string{"a@x.com"}

	stored, err := repo.Replace(ctx, candidate, created.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PlayersNeeded)
	assert.Equal(t, []string{"a@x.com"}, got.JoinedPlayers)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "Evening hoops", got.Title)
}

func TestGameRepositoryReplaceDetectsLostUpdate(t *testing.T) {
	repo := NewGameRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestGame("Evening hoops", 2, time.Now().UTC()))
	require.NoError(t, err)

	// both writers read version 1
	first := card.Apply(created, auth.Identity{Email: "a@x.com"})
	second := card.Apply(created, auth.Identity{Email: "b@x.com"})

	_, err = repo.Replace(ctx, first, created.Version)
	require.NoError(t, err)
	_, err = repo.Replace(ctx, second, created.Version)
	assert.ErrorIs(t, err, card.ErrConflict)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PlayersNeeded)
	assert.Equal(t, []string{"a@x.com"}, got.JoinedPlayers)
}

func TestGameRepositoryReplaceMissing(t *testing.T) {
	repo := NewGameRepository(setupTestDB(t))
	_, err := repo.Replace(context.Background(), models.Game{ID: "ghost", Title: "x"}, 1)
	assert.ErrorIs(t, err, card.ErrNotFound)
}

func TestGameRepositoryList(t *testing.T) {
	repo := NewGameRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"Morning run", "Evening hoops", "Late hoops", "Full court"} {
		g := newTestGame(title, 3, base.Add(time.Duration(i)*time.Hour))
		if title == "Full court" {
			g.PlayersNeeded = 0
		}
		if title == "Morning run" {
			g.GameType = "running"
		}
		_, err := repo.Create(ctx, g)
		require.NoError(t, err)
	}

	t.Run("all, paged", func(t *testing.T) {
		page, err := repo.List(ctx, GameFilter{}, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.TotalItems)
		require.Len(t, page.Items, 3)
		assert.Equal(t, "Morning run", page.Items[0].Title)

		page2, err := repo.List(ctx, GameFilter{}, 2, 3)
		require.NoError(t, err)
		require.Len(t, page2.Items, 1)
		assert.Equal(t, "Full court", page2.Items[0].Title)
	})

	t.Run("open only", func(t *testing.T) {
		page, err := repo.List(ctx, GameFilter{OpenOnly: true}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalItems)
	})

	t.Run("by type and search", func(t *testing.T) {
		page, err := repo.List(ctx, GameFilter{GameType: "basketball", Search: "HOOPS"}, 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Evening hoops", page.Items[0].Title)
		assert.Equal(t, "Late hoops", page.Items[1].Title)
	})
}
