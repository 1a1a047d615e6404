package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/dbx"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, s *models.Snapshot) error {
	query :=
		`INSERT INTO snapshots (short_key, hash, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (short_key) DO NOTHING
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, s.ShortKey, s.Hash, s.Data).Scan(&s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetHash(ctx context.Context, key string) (string, error) {
	query := `SELECT hash FROM snapshots WHERE short_key = $1`

	var hash string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return hash, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (*models.Snapshot, error) {
	query :=
		`SELECT short_key, hash, data, created_at FROM snapshots
		 WHERE short_key = $1`

	s := &models.Snapshot{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&s.ShortKey, &s.Hash, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
