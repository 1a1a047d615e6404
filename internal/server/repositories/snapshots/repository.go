package snapshots

import (
	"context"

	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
)

// Repository stores immutable drawing snapshots keyed by short key.
type Repository interface {
	// Insert fails with common.ErrorAlreadyExists when the key is taken.
	Insert(ctx context.Context, s *models.Snapshot) error
	// GetHash returns the content hash stored under key.
	GetHash(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, key string) (*models.Snapshot, error)
}
