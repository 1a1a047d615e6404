package localstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestState_FreshStoreIsNewAndSaved(t *testing.T) {
	s := openStore(t)

	st, err := s.State(context.Background())
	require.NoError(t, err)

	assert.Empty(t, st.DocumentID)
	assert.False(t, st.Bound())
	assert.True(t, st.Saved)
	assert.Empty(t, st.Content)
}

func TestApply_AllChanges(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx,
		WithContent([]byte(`{"layers":[1]}`)),
		WithDocumentID("42"),
		WithSaved(false),
	))

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{DocumentID: "42", Saved: false, Content: []byte(`{"layers":[1]}`)}, st)

	require.NoError(t, s.Apply(ctx, WithoutDocumentID(), WithSaved(true)))

	st, err = s.State(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.DocumentID)
	assert.True(t, st.Saved)
	assert.Equal(t, []byte(`{"layers":[1]}`), st.Content)
}

func TestWithDocumentID_EmptyClears(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, WithDocumentID("7")))
	require.NoError(t, s.Apply(ctx, WithDocumentID("")))

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.False(t, st.Bound())
}

func TestWithContent_CopiesInput(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	buf := []byte("abc")
	change := WithContent(buf)
	buf[0] = 'X'
	require.NoError(t, s.Apply(ctx, change))

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), st.Content)
}

func TestApply_IsAtomic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.Apply(ctx, WithDocumentID("1"), WithContent([]byte("old")), WithSaved(true)))

	boom := errors.New("boom")
	failing := func(ctx context.Context, repo metadata.Repository) error { return boom }

	err := s.Apply(ctx, WithContent([]byte("new")), WithoutDocumentID(), failing)
	require.ErrorIs(t, err, ErrLocalStore)
	require.ErrorIs(t, err, boom)

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{DocumentID: "1", Saved: true, Content: []byte("old")}, st)
}

func TestApply_NoChanges(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Apply(context.Background()))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, WithDocumentID("99"), WithSaved(false)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	st, err := s.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "99", st.DocumentID)
	assert.False(t, st.Saved)
}

func TestOpen_MigrationFailure(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })
	gooseUp = func(ctx context.Context, db *sql.DB) error { return errors.New("bad schema") }

	_, err := Open(context.Background(), ":memory:")
	require.ErrorIs(t, err, ErrLocalStore)
	require.ErrorContains(t, err, "bad schema")
}

func TestState_ClosedDatabase(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.State(context.Background())
	require.ErrorIs(t, err, ErrLocalStore)

	err = s.Apply(context.Background(), WithSaved(true))
	require.ErrorIs(t, err, ErrLocalStore)
}
