package services

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/localstore"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client. Results are preset per call; every
// call is counted in Calls.
type fakeClient struct {
	mu    sync.Mutex
	Calls []string

	Identity    *models.Identity
	IdentityErr error

	LoginErr  error
	SignupErr error
	LogoutErr error
	// IdentityAfterLogin replaces Identity once Login succeeds.
	IdentityAfterLogin *models.Identity
	// IdentityAfterLogout replaces Identity once Logout succeeds.
	IdentityAfterLogout *models.Identity

	Docs    map[string]*models.RemoteDocument
	GetErr  error
	ListRet []models.RemoteDocument
	ListErr error

	CreateID  string
	CreateErr error
	// CreateGate, when set, blocks CreateDocument until it is closed.
	CreateGate    chan struct{}
	CreateStarted chan struct{}

	UpdateErr error
	MetaErr   error
	DeleteErr error

	Snapshots   map[string][]byte
	SnapshotErr error
	ShareKey    string
	ShareErr    error

	LastCreateName string
	LastCreateData []byte
	LastUpdateID   string
	LastUpdateData []byte
	LastMetaID     string
	LastMeta       models.DocumentMetadata
	LastDeleteID   string
	LastShareData  []byte
	LastLogin      models.Credentials

	Base *url.URL
}

var errNotFound = errors.New("Not found")

func (f *fakeClient) call(name string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *fakeClient) GetIdentity(ctx context.Context) (*models.Identity, error) {
	f.call("GetIdentity")
	return f.Identity, f.IdentityErr
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) error {
	f.call("Login")
	f.LastLogin = creds
	if f.LoginErr != nil {
		return f.LoginErr
	}
	if f.IdentityAfterLogin != nil {
		f.Identity = f.IdentityAfterLogin
	}
	return nil
}

func (f *fakeClient) Signup(ctx context.Context, creds models.Credentials) error {
	f.call("Signup")
	return f.SignupErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.call("Logout")
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.Identity = f.IdentityAfterLogout
	return nil
}

func (f *fakeClient) ListDocuments(ctx context.Context) ([]models.RemoteDocument, error) {
	f.call("ListDocuments")
	return f.ListRet, f.ListErr
}

func (f *fakeClient) GetDocument(ctx context.Context, id string) (*models.RemoteDocument, error) {
	f.call("GetDocument")
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	doc, ok := f.Docs[id]
	if !ok {
		return nil, errNotFound
	}
	return doc, nil
}

func (f *fakeClient) CreateDocument(ctx context.Context, name string, data []byte) (string, error) {
	f.call("CreateDocument")
	f.LastCreateName = name
	f.LastCreateData = bytes.Clone(data)
	if f.CreateStarted != nil {
		close(f.CreateStarted)
	}
	if f.CreateGate != nil {
		<-f.CreateGate
	}
	return f.CreateID, f.CreateErr
}

func (f *fakeClient) UpdateDocumentData(ctx context.Context, id string, data []byte) error {
	f.call("UpdateDocumentData")
	f.LastUpdateID = id
	f.LastUpdateData = bytes.Clone(data)
	return f.UpdateErr
}

func (f *fakeClient) UpdateDocumentMetadata(ctx context.Context, id string, meta models.DocumentMetadata) error {
	f.call("UpdateDocumentMetadata")
	f.LastMetaID = id
	f.LastMeta = meta
	return f.MetaErr
}

func (f *fakeClient) DeleteDocument(ctx context.Context, id string) error {
	f.call("DeleteDocument")
	f.LastDeleteID = id
	return f.DeleteErr
}

func (f *fakeClient) GetSnapshot(ctx context.Context, shortKey string) (*models.Snapshot, error) {
	f.call("GetSnapshot")
	if f.SnapshotErr != nil {
		return nil, f.SnapshotErr
	}
	data, ok := f.Snapshots[shortKey]
	if !ok {
		return nil, errNotFound
	}
	return &models.Snapshot{ShortKey: shortKey, Data: data}, nil
}

func (f *fakeClient) CreateSnapshot(ctx context.Context, data []byte) (string, error) {
	f.call("CreateSnapshot")
	f.LastShareData = bytes.Clone(data)
	return f.ShareKey, f.ShareErr
}

func (f *fakeClient) BaseURL() *url.URL {
	if f.Base != nil {
		u := *f.Base
		return &u
	}
	return &url.URL{Scheme: "http", Host: "127.0.0.1:8000"}
}

// fakeSurface is an in-memory editing surface.
type fakeSurface struct {
	mu         sync.Mutex
	content    []byte
	RestoreErr error
	EmptyErr   error
}

func (s *fakeSurface) Serialize() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.content)
}

func (s *fakeSurface) Restore(data []byte) error {
	if s.RestoreErr != nil {
		return s.RestoreErr
	}
	s.mu.Lock()
	s.content = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}

func (s *fakeSurface) Empty() error {
	if s.EmptyErr != nil {
		return s.EmptyErr
	}
	s.mu.Lock()
	s.content = nil
	s.mu.Unlock()
	return nil
}

func (s *fakeSurface) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.content) == 0
}

func (s *fakeSurface) set(data string) {
	s.mu.Lock()
	s.content = []byte(data)
	s.mu.Unlock()
}

type fakePrompter struct {
	Decision SaveDecision
	Asked    int
}

func (p *fakePrompter) ConfirmSave(ctx context.Context) SaveDecision {
	p.Asked++
	return p.Decision
}

type recordingObserver struct {
	Events []SessionEvent
}

func (o *recordingObserver) SessionChanged(ctx context.Context, ev SessionEvent) {
	o.Events = append(o.Events, ev)
}

// env is a DocumentSyncManager wired to fakes and a real in-memory store.
type env struct {
	store    *localstore.Store
	client   *fakeClient
	surface  *fakeSurface
	sessions SessionManager
	prompter *fakePrompter
	location []string
	docs     DocumentSyncManager
}

var ann = &models.Identity{UserID: 1, Email: "ann@example.com"}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := localstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e := &env{
		store:    store,
		client:   &fakeClient{Docs: map[string]*models.RemoteDocument{}, Snapshots: map[string][]byte{}},
		surface:  &fakeSurface{},
		prompter: &fakePrompter{Decision: Cancel},
	}
	e.sessions = NewSessionManager(e.client, logging.Discard())
	e.docs = NewDocumentSyncManager(DocumentDeps{
		Store:    store,
		Client:   e.client,
		Surface:  e.surface,
		Sessions: e.sessions,
		Prompter: e.prompter,
		Location: LocationFunc(func(p string) { e.location = append(e.location, p) }),
		Logger:   logging.Discard(),
	})
	_, err = e.docs.Init(context.Background())
	require.NoError(t, err)
	return e
}

// loginAs makes the server report id and refreshes the session.
func (e *env) loginAs(t *testing.T, id *models.Identity) {
	t.Helper()
	e.client.Identity = id
	require.NotNil(t, e.sessions.Refresh(context.Background()))
}

func (e *env) state(t *testing.T) localstore.State {
	t.Helper()
	st, err := e.store.State(context.Background())
	require.NoError(t, err)
	return st
}

func (e *env) seed(t *testing.T, id string, saved bool, content string) {
	t.Helper()
	require.NoError(t, e.store.Apply(context.Background(),
		localstore.WithDocumentID(id),
		localstore.WithSaved(saved),
		localstore.WithContent([]byte(content)),
	))
	e.surface.set(content)
	_, err := e.docs.Init(context.Background())
	require.NoError(t, err)
}

func (e *env) networkCalls() []string {
	var out []string
	for _, c := range e.client.calls() {
		if c != "GetIdentity" {
			out = append(out, c)
		}
	}
	return out
}
