// Package localstore persists the client's local document state: which
// remote drawing the canvas is bound to, whether it is saved, and a mirror
// of the canvas content. It survives restarts and never talks to the
// network.
package localstore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sketchkeeper/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	KeyDocumentID = "current_drawing_id"
	KeySaved      = "saved"
	KeyContent    = "content"
)

var (
	flagSaved   = []byte("1")
	flagUnsaved = []byte("0")
)

var ErrLocalStore = errors.New("local store error")

// State is a point-in-time read of the persisted document state.
// An empty DocumentID means the content has no remote copy yet.
type State struct {
	DocumentID string
	Saved      bool
	Content    []byte
}

// Bound reports whether the content is tied to a remote drawing.
func (s State) Bound() bool {
	return s.DocumentID != ""
}

// Change is one mutation applied by Store.Apply.
type Change func(ctx context.Context, repo metadata.Repository) error

func WithDocumentID(id string) Change {
	if id == "" {
		return WithoutDocumentID()
	}
	return func(ctx context.Context, repo metadata.Repository) error {
		return repo.Set(ctx, KeyDocumentID, []byte(id))
	}
}

func WithoutDocumentID() Change {
	return func(ctx context.Context, repo metadata.Repository) error {
		return repo.Delete(ctx, KeyDocumentID)
	}
}

func WithSaved(saved bool) Change {
	v := flagUnsaved
	if saved {
		v = flagSaved
	}
	return func(ctx context.Context, repo metadata.Repository) error {
		return repo.Set(ctx, KeySaved, v)
	}
}

func WithContent(content []byte) Change {
	data := bytes.Clone(content)
	return func(ctx context.Context, repo metadata.Repository) error {
		return repo.Set(ctx, KeyContent, data)
	}
}

type Store struct {
	db *sql.DB
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite database at dsn and brings its
// schema up to date.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrLocalStore, dsn, err)
	}
	// One connection keeps ":memory:" databases coherent and serialises
	// writers the way SQLite wants anyway.
	db.SetMaxOpenConns(1)

	if err := gooseUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrLocalStore, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) State(ctx context.Context) (State, error) {
	values, err := metadata.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	st := State{
		DocumentID: string(values[KeyDocumentID]),
		Saved:      true,
		Content:    values[KeyContent],
	}
	if v, ok := values[KeySaved]; ok {
		st.Saved = bytes.Equal(v, flagSaved)
	}
	return st, nil
}

// Apply runs all changes in one transaction. Either every change is
// persisted or none is.
func (s *Store) Apply(ctx context.Context, changes ...Change) error {
	if len(changes) == 0 {
		return nil
	}
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, c := range changes {
			if err := c(ctx, repo); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	return nil
}
