package card

import (
	"context"

	"gameboard/backend/internal/models"
)

// Store is the remote document store holding game records keyed by id.
//
// Replace overwrites the whole document only if the stored version still
// equals expectedVersion, and returns the stored record with its new version.
// It returns ErrConflict when another writer got there first and ErrNotFound
// when the record is gone.
type Store interface {
	Get(ctx context.Context, id string) (models.Game, error)
	Replace(ctx context.Context, g models.Game, expectedVersion int64) (models.Game, error)
}
