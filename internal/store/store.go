package store

import (
	"context"

	"github.com/aaronzipp/word-impostor/internal/models"
)

// Repository is the persistence boundary for game aggregates. Aggregates are
// always read and written whole; partial updates are not part of the
// contract. Lookups return models.ErrNotFound when the game is absent.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.Game, error)
	FindByCode(ctx context.Context, code string) (*models.Game, error)
	Create(ctx context.Context, g *models.Game) error
	Update(ctx context.Context, g *models.Game) error
}
