package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/config"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/repomanager"
)

type DrawingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxListed   int
}

func NewDrawingService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *DrawingService {
	return &DrawingService{db: db, repomanager: m, maxListed: cfg.MaxListedDrawings}
}

// Create requires a name. Empty data is a blank drawing.
func (s *DrawingService) Create(ctx context.Context, userID int64, name, data string) (*models.Drawing, error) {
	if name == "" {
		return nil, common.ErrorBadRequest
	}

	d, err := s.repomanager.Drawings(s.db).Create(ctx, &models.Drawing{UserID: userID, Name: name, Data: data})
	if err != nil {
		return nil, fmt.Errorf("error creating drawing: %w", err)
	}
	return d, nil
}

func (s *DrawingService) Get(ctx context.Context, userID, id int64) (*models.Drawing, error) {
	return s.repomanager.Drawings(s.db).Get(ctx, id, userID)
}

// Update applies the non-empty fields of patch.
func (s *DrawingService) Update(ctx context.Context, userID, id int64, patch models.DrawingPatch) error {
	return s.repomanager.Drawings(s.db).Update(ctx, id, userID, patch)
}

func (s *DrawingService) Delete(ctx context.Context, userID, id int64) error {
	return s.repomanager.Drawings(s.db).Delete(ctx, id, userID)
}

func (s *DrawingService) List(ctx context.Context, userID int64) ([]models.Drawing, error) {
	return s.repomanager.Drawings(s.db).List(ctx, userID, s.maxListed)
}
