package users

import (
	"context"

	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID. A taken email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
