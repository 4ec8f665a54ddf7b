// Package stories declares the story store contract and its PostgreSQL
// implementation.
package stories

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

// Repository persists stories. Lookups of an absent id return
// common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context, author string) ([]*models.Story, error)
	Get(ctx context.Context, id string) (*models.Story, error)
	// GetForUpdate is Get with a row lock; use it inside dbx.WithTx.
	GetForUpdate(ctx context.Context, id string) (*models.Story, error)
	Create(ctx context.Context, story *models.Story) (*models.Story, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id string) error
	// FillMissingCountry sets country on every story that has none and
	// reports how many rows changed.
	FillMissingCountry(ctx context.Context, country string) (int64, error)
}
