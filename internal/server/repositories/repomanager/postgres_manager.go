package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sketchkeeper/internal/dbx"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/drawings"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

var gooseUpContext = goose.UpContext

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Drawings(db dbx.DBTX) drawings.Repository {
	return drawings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Snapshots(db dbx.DBTX) snapshots.Repository {
	return snapshots.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return gooseUpContext(ctx, db, ".")
}
