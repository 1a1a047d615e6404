package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/dbx"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/drawings"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/users"
)

type fakeManager struct {
	users     *fakeUsersRepo
	drawings  *fakeDrawingsRepo
	snapshots *fakeSnapshotsRepo
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:     &fakeUsersRepo{byEmail: map[string]*models.User{}},
		drawings:  &fakeDrawingsRepo{rows: map[int64]*models.Drawing{}},
		snapshots: &fakeSnapshotsRepo{rows: map[string]*models.Snapshot{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Drawings(dbx.DBTX) drawings.Repository        { return m.drawings }
func (m *fakeManager) Snapshots(dbx.DBTX) snapshots.Repository      { return m.snapshots }

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	nextID  int64

	GetErr    error
	CreateErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeDrawingsRepo struct {
	rows   map[int64]*models.Drawing
	nextID int64

	LastLimit int
	CreateErr error
}

func (f *fakeDrawingsRepo) Create(ctx context.Context, d *models.Drawing) (*models.Drawing, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.nextID++
	d.ID = f.nextID
	d.CreatedAt = time.Unix(f.nextID, 0)
	cp := *d
	f.rows[d.ID] = &cp
	return d, nil
}

func (f *fakeDrawingsRepo) Get(ctx context.Context, id, userID int64) (*models.Drawing, error) {
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDrawingsRepo) Update(ctx context.Context, id, userID int64, patch models.DrawingPatch) error {
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return common.ErrorNotFound
	}
	if patch.Name != "" {
		d.Name = patch.Name
	}
	if patch.Data != "" {
		d.Data = patch.Data
	}
	return nil
}

func (f *fakeDrawingsRepo) Delete(ctx context.Context, id, userID int64) error {
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeDrawingsRepo) List(ctx context.Context, userID int64, limit int) ([]models.Drawing, error) {
	f.LastLimit = limit
	result := make([]models.Drawing, 0)
	for _, d := range f.rows {
		if d.UserID == userID {
			result = append(result, models.Drawing{ID: d.ID, UserID: d.UserID, Name: d.Name, CreatedAt: d.CreatedAt})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type fakeSnapshotsRepo struct {
	rows map[string]*models.Snapshot

	Inserts   int
	GetCalls  int
	InsertErr error
}

func (f *fakeSnapshotsRepo) Insert(ctx context.Context, s *models.Snapshot) error {
	f.Inserts++
	if f.InsertErr != nil {
		return f.InsertErr
	}
	if _, ok := f.rows[s.ShortKey]; ok {
		return common.ErrorAlreadyExists
	}
	s.CreatedAt = time.Now()
	cp := *s
	f.rows[s.ShortKey] = &cp
	return nil
}

func (f *fakeSnapshotsRepo) GetHash(ctx context.Context, key string) (string, error) {
	s, ok := f.rows[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return s.Hash, nil
}

func (f *fakeSnapshotsRepo) Get(ctx context.Context, key string) (*models.Snapshot, error) {
	f.GetCalls++
	s, ok := f.rows[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeRevoker struct {
	revoked map[string]time.Time

	Err error
}

func (f *fakeRevoker) Revoke(ctx context.Context, jti string, exp time.Time) error {
	if f.Err != nil {
		return f.Err
	}
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[jti] = exp
	return nil
}

func (f *fakeRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeSnapshotCache struct {
	items map[string]*models.Snapshot

	Puts   int
	GetErr error
}

func (f *fakeSnapshotCache) Get(ctx context.Context, key string) (*models.Snapshot, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.items[key], nil
}

func (f *fakeSnapshotCache) Put(ctx context.Context, s *models.Snapshot) error {
	f.Puts++
	if f.items == nil {
		f.items = map[string]*models.Snapshot{}
	}
	f.items[s.ShortKey] = s
	return nil
}
