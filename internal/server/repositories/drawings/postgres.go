package drawings

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

func (r *PostgresRepository) Create(ctx context.Context, d *models.Drawing) (*models.Drawing, error) {
	query :=
		`INSERT INTO drawings (user_id, name, data)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, d.UserID, d.Name, d.Data).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID int64) (*models.Drawing, error) {
	query :=
		`SELECT id, user_id, name, data, created_at FROM drawings
		 WHERE id = $1 AND user_id = $2`

	d := &models.Drawing{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&d.ID, &d.UserID, &d.Name, &d.Data, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// Update replaces name and data. Empty fields keep the stored value.
func (r *PostgresRepository) Update(ctx context.Context, id, userID int64, patch models.DrawingPatch) error {
	query :=
		`UPDATE drawings
		 SET name = COALESCE(NULLIF($3, ''), name),
		     data = COALESCE(NULLIF($4, ''), data)
		 WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID, patch.Name, patch.Data)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM drawings WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

// List returns the newest drawings first. Data is not loaded.
func (r *PostgresRepository) List(ctx context.Context, userID int64, limit int) ([]models.Drawing, error) {
	query :=
		`SELECT id, name, created_at FROM drawings
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Drawing, 0)
	for rows.Next() {
		d := models.Drawing{UserID: userID}
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	switch n {
	case 0:
		return common.ErrorNotFound
	case 1:
		return nil
	default:
		return fmt.Errorf("unexpected number of rows affected: %d", n)
	}
}
