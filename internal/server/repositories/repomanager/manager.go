// Package repomanager hands out repositories bound to a database handle or
// transaction and applies the server schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sketchkeeper/internal/dbx"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/drawings"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Drawings(db dbx.DBTX) drawings.Repository
	Snapshots(db dbx.DBTX) snapshots.Repository
}
