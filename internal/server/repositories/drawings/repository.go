package drawings

import (
	"context"

	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
)

// Repository stores user-owned drawings. Every lookup is scoped by owner;
// a drawing owned by someone else is reported as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, d *models.Drawing) (*models.Drawing, error)
	Get(ctx context.Context, id, userID int64) (*models.Drawing, error)
	Update(ctx context.Context, id, userID int64, patch models.DrawingPatch) error
	Delete(ctx context.Context, id, userID int64) error
	List(ctx context.Context, userID int64, limit int) ([]models.Drawing, error)
}
