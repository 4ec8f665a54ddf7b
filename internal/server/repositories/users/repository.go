// Package users declares the server-side user store contract and its
// PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

// Repository is the user store consumed by the auth core.
type Repository interface {
	// Create assigns an identifier and creation time and persists user.
	// A taken username yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin finds a user by username or returns common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
