package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/services"
)

type UserService interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Identify(ctx context.Context, token string) (*models.User, *auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	SessionValidity() time.Duration
}

type DrawingService interface {
	Create(ctx context.Context, userID int64, name, data string) (*models.Drawing, error)
	Get(ctx context.Context, userID, id int64) (*models.Drawing, error)
	Update(ctx context.Context, userID, id int64, patch models.DrawingPatch) error
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64) ([]models.Drawing, error)
}

type SnapshotService interface {
	Create(ctx context.Context, data string) (string, error)
	Get(ctx context.Context, shortKey string) (*models.Snapshot, error)
}

type handlers struct {
	users     UserService
	drawings  DrawingService
	snapshots SnapshotService
	log       logging.Logger
}
