package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/client"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/config"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/editor"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/localstore"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/services"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ fakes ------------

type fakeSessions struct {
	session *models.Session

	LastCreds models.Credentials
	LoginOut  services.SessionOutcome
	SignupOut services.SessionOutcome
	LogoutOut services.SessionOutcome
	Logins    int
}

func (f *fakeSessions) Refresh(ctx context.Context) *models.Session { return f.session }
func (f *fakeSessions) Login(ctx context.Context, c models.Credentials) services.SessionOutcome {
	f.Logins++
	f.LastCreds = c
	if f.LoginOut.Kind == services.SessionLoggedIn {
		f.session = f.LoginOut.Session
	}
	return f.LoginOut
}
func (f *fakeSessions) Signup(ctx context.Context, c models.Credentials) services.SessionOutcome {
	f.LastCreds = c
	return f.SignupOut
}
func (f *fakeSessions) Logout(ctx context.Context) services.SessionOutcome { return f.LogoutOut }
func (f *fakeSessions) Current() *models.Session                           { return f.session }
func (f *fakeSessions) IsLoggedIn() bool                                   { return f.session != nil }
func (f *fakeSessions) Username() string                                   { return f.session.Username() }
func (f *fakeSessions) Subscribe(o services.SessionObserver)               {}

type fakeDocs struct {
	status services.Status

	// Save holds the outcomes SaveOrCreate returns, in order.
	Save      []services.Outcome
	Out       services.Outcome
	CreateOut services.Outcome
	ListOut   []models.RemoteDocument
	ListErr   error

	LastID    string
	LastName  string
	Calls     []string
	Changes   int
	Completed bool
}

func (f *fakeDocs) call(name string) { f.Calls = append(f.Calls, name) }

func (f *fakeDocs) SessionChanged(ctx context.Context, ev services.SessionEvent) {}
func (f *fakeDocs) Init(ctx context.Context) (services.Status, error) {
	f.call("init")
	return f.status, nil
}
func (f *fakeDocs) Status(ctx context.Context) (services.Status, error) { return f.status, nil }
func (f *fakeDocs) StartNew(ctx context.Context) services.Outcome {
	f.call("new")
	return f.Out
}
func (f *fakeDocs) SaveOrCreate(ctx context.Context) services.Outcome {
	f.call("save")
	out := f.Save[0]
	f.Save = f.Save[1:]
	return out
}
func (f *fakeDocs) Create(ctx context.Context, name string) services.Outcome {
	f.call("create")
	f.LastName = name
	return f.CreateOut
}
func (f *fakeDocs) Update(ctx context.Context, id string, content []byte) services.Outcome {
	f.call("update")
	return f.Out
}
func (f *fakeDocs) Rename(ctx context.Context, id, name string) services.Outcome {
	f.call("rename")
	f.LastID, f.LastName = id, name
	return f.Out
}
func (f *fakeDocs) Open(ctx context.Context, id string) services.Outcome {
	f.call("open")
	f.LastID = id
	return f.Out
}
func (f *fakeDocs) Duplicate(ctx context.Context, id string) services.Outcome {
	f.call("duplicate")
	f.LastID = id
	return f.Out
}
func (f *fakeDocs) ForkFromShare(ctx context.Context, key string) services.Outcome {
	f.call("fork")
	f.LastID = key
	return f.Out
}
func (f *fakeDocs) Delete(ctx context.Context, id string, onComplete func()) services.Outcome {
	f.call("delete")
	f.LastID = id
	if f.Out.OK() && onComplete != nil {
		f.Completed = true
		onComplete()
	}
	return f.Out
}
func (f *fakeDocs) List(ctx context.Context) ([]models.RemoteDocument, error) {
	f.call("list")
	return f.ListOut, f.ListErr
}
func (f *fakeDocs) RequestGuardedTransition(ctx context.Context) (services.Transition, *services.Outcome) {
	return services.Proceed, nil
}
func (f *fakeDocs) OnContentChanged(ctx context.Context)        { f.Changes++ }
func (f *fakeDocs) InvalidateCurrent(ctx context.Context) error { return nil }

type fakeShare struct{ link string }

func (f *fakeShare) IssueShareLink(ctx context.Context) string { return f.link }

// ------------ helpers ------------

func newTestApp(input string) (*App, *bytes.Buffer, *fakeSessions, *fakeDocs) {
	out := &bytes.Buffer{}
	sessions := &fakeSessions{}
	docs := &fakeDocs{}
	a := &App{
		config:   &config.Config{StartPath: "/"},
		log:      logging.Discard(),
		sessions: sessions,
		docs:     docs,
		share:    &fakeShare{},
		surface:  editor.NewMemorySurface(),
		loader:   &loader{log: logging.Discard()},
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
		location: "/",
	}
	return a, out, sessions, docs
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(w io.Writer) ([]byte, error) {
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = old })
}

var ann = &models.Session{UserID: 7, Email: "ann@example.com"}

// ------------ tests ------------

func TestRender_OutcomeMessages(t *testing.T) {
	tests := []struct {
		name string
		out  services.Outcome
		want string
		err  bool
	}{
		{name: "started", out: services.Outcome{Kind: services.KindStarted}, want: "OK: New drawing started"},
		{name: "created", out: services.Outcome{Kind: services.KindCreated, DocumentID: "4"}, want: "OK: Drawing created as #4"},
		{name: "saved", out: services.Outcome{Kind: services.KindSaved}, want: "OK: Drawing saved"},
		{name: "opened", out: services.Outcome{Kind: services.KindOpened, DocumentID: "9"}, want: "OK: Drawing #9 opened"},
		{name: "forked", out: services.Outcome{Kind: services.KindForked}, want: "OK: Shared drawing copied into a new, unsaved drawing"},
		{name: "declined", out: services.Outcome{Kind: services.KindDeclined}, want: "Cancelled"},
		{name: "busy", out: services.Outcome{Kind: services.KindBusy}, want: "Error: another operation is still running", err: true},
		{
			name: "api error message",
			out:  services.Outcome{Kind: services.KindFailed, Err: &client.APIError{Message: "Not found", StatusCode: 404}},
			want: "Error: Not found",
			err:  true,
		},
		{
			name: "unauthorized",
			out:  services.Outcome{Kind: services.KindFailed, Err: client.ErrUnauthorized},
			want: "Error: please log in first",
			err:  true,
		},
		{
			name: "unavailable",
			out:  services.Outcome{Kind: services.KindFailed, Err: errors.Join(errors.New("dial"), client.ErrUnavailable)},
			want: "Error: server unavailable",
			err:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, out, _, _ := newTestApp("")
			err := a.render(context.Background(), tc.out)
			if tc.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, strings.TrimSpace(out.String()))
		})
	}
}

func TestSave_NameRequiredPromptsAndCreates(t *testing.T) {
	a, out, _, docs := newTestApp("Sunset\n")
	docs.Save = []services.Outcome{{Kind: services.KindNameRequired}}
	docs.CreateOut = services.Outcome{Kind: services.KindCreated, DocumentID: "11"}

	require.NoError(t, a.Save(context.Background()))

	assert.Equal(t, []string{"save", "create"}, docs.Calls)
	assert.Equal(t, "Sunset", docs.LastName)
	assert.Contains(t, out.String(), "OK: Drawing created as #11")
}

func TestSave_EmptyNameAbandonsCreate(t *testing.T) {
	a, out, _, docs := newTestApp("\n")
	docs.Save = []services.Outcome{{Kind: services.KindNameRequired}}

	require.ErrorIs(t, a.Save(context.Background()), errEmptyInput)
	assert.Equal(t, []string{"save"}, docs.Calls)
	assert.Contains(t, out.String(), "Error: name is required")
}

func TestOpen_DeferredRendersNestedSave(t *testing.T) {
	a, out, _, docs := newTestApp("Draft\n")
	docs.Out = services.Outcome{Kind: services.KindDeferred, Save: &services.Outcome{Kind: services.KindNameRequired}}
	docs.CreateOut = services.Outcome{Kind: services.KindCreated, DocumentID: "5"}

	require.NoError(t, a.Open(context.Background(), "9"))

	assert.Equal(t, []string{"open", "create"}, docs.Calls)
	s := out.String()
	assert.Contains(t, s, "Saving the current drawing first")
	assert.Contains(t, s, "OK: Drawing created as #5")
	assert.Contains(t, s, "Run the command again to continue")
}

func TestLogin(t *testing.T) {
	stubPassword(t, "pw12345")
	a, out, sessions, _ := newTestApp("ann@example.com\n")
	sessions.LoginOut = services.SessionOutcome{Kind: services.SessionLoggedIn, Session: ann}

	require.NoError(t, a.Login(context.Background()))

	assert.Equal(t, models.Credentials{Email: "ann@example.com", Password: "pw12345"}, sessions.LastCreds)
	assert.Contains(t, out.String(), "OK: Welcome, ann")
	assert.True(t, a.isLoggedIn())
}

func TestLogin_Failure(t *testing.T) {
	stubPassword(t, "bad")
	a, out, sessions, _ := newTestApp("ann@example.com\n")
	sessions.LoginOut = services.SessionOutcome{
		Kind: services.SessionFailed,
		Err:  &client.APIError{Message: "User not found", StatusCode: 200},
	}

	require.Error(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "Error: User not found")
}

func TestSignup_PrefillsLogin(t *testing.T) {
	calls := 0
	old := getPassword
	getPassword = func(w io.Writer) ([]byte, error) {
		calls++
		if calls == 1 {
			return []byte("pw12345"), nil
		}
		return []byte{}, nil
	}
	t.Cleanup(func() { getPassword = old })

	// email for signup, then Enter to accept the prefilled email on login
	a, out, sessions, _ := newTestApp("ann@example.com\n\n")
	creds := models.Credentials{Email: "ann@example.com", Password: "pw12345"}
	sessions.SignupOut = services.SessionOutcome{Kind: services.SessionSignedUp, Credentials: &creds}
	sessions.LoginOut = services.SessionOutcome{Kind: services.SessionLoggedIn, Session: ann}

	require.NoError(t, a.Signup(context.Background()))

	assert.Equal(t, 1, sessions.Logins)
	assert.Equal(t, creds, sessions.LastCreds)
	assert.Nil(t, a.prefill)
	assert.Contains(t, out.String(), "OK: Account created")
	assert.Contains(t, out.String(), "Enter email [ann@example.com]")
}

func TestRename(t *testing.T) {
	a, out, _, docs := newTestApp("New name\n")
	docs.Out = services.Outcome{Kind: services.KindRenamed, DocumentID: "3"}

	require.NoError(t, a.Rename(context.Background(), "3"))
	assert.Equal(t, "3", docs.LastID)
	assert.Equal(t, "New name", docs.LastName)
	assert.Contains(t, out.String(), "OK: Drawing renamed")
}

func TestDelete_ConfirmsAndRefreshesList(t *testing.T) {
	a, out, _, docs := newTestApp("y\n")
	docs.Out = services.Outcome{Kind: services.KindDeleted}
	docs.ListOut = []models.RemoteDocument{{ID: "2", Name: "Other"}}

	require.NoError(t, a.Delete(context.Background(), "3"))

	assert.True(t, docs.Completed)
	assert.Equal(t, []string{"delete", "list"}, docs.Calls)
	assert.Contains(t, out.String(), "Other")
	assert.Contains(t, out.String(), "OK: Drawing deleted")
}

func TestDelete_NoKeepsDrawing(t *testing.T) {
	a, out, _, docs := newTestApp("n\n")

	require.NoError(t, a.Delete(context.Background(), "3"))
	assert.Empty(t, docs.Calls)
	assert.Contains(t, out.String(), "Cancelled")
}

func TestList(t *testing.T) {
	a, out, _, docs := newTestApp("")
	docs.ListOut = []models.RemoteDocument{
		{ID: "2", Name: "Sunset", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)},
		{ID: "1", Name: "Cat"},
	}

	require.NoError(t, a.List(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Sunset")
	assert.Contains(t, lines[1], "2024-05-01 10:00")
	assert.Contains(t, lines[2], "Cat")
}

func TestList_Empty(t *testing.T) {
	a, out, _, _ := newTestApp("")
	require.NoError(t, a.List(context.Background()))
	assert.Equal(t, "No drawings yet\n", out.String())
}

func TestShare(t *testing.T) {
	a, out, _, _ := newTestApp("")
	require.NoError(t, a.Share(context.Background()))
	assert.Contains(t, out.String(), "Error: could not create a share link")

	out.Reset()
	a.share = &fakeShare{link: "http://host/abcde"}
	require.NoError(t, a.Share(context.Background()))
	assert.Contains(t, out.String(), "OK: Share link: http://host/abcde")
}

func TestEditAndShow(t *testing.T) {
	a, out, _, _ := newTestApp("line one\nline two\n\n")
	changes := 0
	a.surface.OnChange(func() { changes++ })

	require.NoError(t, a.Edit(context.Background()))
	assert.Equal(t, 1, changes)

	out.Reset()
	require.NoError(t, a.Show(context.Background()))
	assert.Equal(t, "line one\nline two\n", out.String())
}

func TestShow_Empty(t *testing.T) {
	a, out, _, _ := newTestApp("")
	require.NoError(t, a.Show(context.Background()))
	assert.Equal(t, "(empty drawing)\n", out.String())
}

func TestStatusLine(t *testing.T) {
	a, _, sessions, docs := newTestApp("")
	assert.Equal(t, "anonymous /", a.statusLine(context.Background()))

	sessions.session = ann
	docs.status = services.Status{DocumentID: "4", Bound: true, Saved: false, ShowSaved: true}
	a.setLocation("/")
	assert.Equal(t, "ann / *", a.statusLine(context.Background()))

	a.loader.Loading()
	assert.Equal(t, "ann / * (busy)", a.statusLine(context.Background()))
	a.loader.LoadingFinish()
}

func TestPrompter(t *testing.T) {
	tests := []struct {
		input string
		want  services.SaveDecision
	}{
		{"s\n", services.SaveFirst},
		{"d\n", services.Discard},
		{"c\n", services.Cancel},
		{"", services.Cancel},
	}
	for _, tc := range tests {
		p := &prompter{reader: rdr(tc.input), w: &bytes.Buffer{}}
		assert.Equal(t, tc.want, p.ConfirmSave(context.Background()), "input %q", tc.input)
	}
}

// ------------ wiring ------------

type stubClient struct {
	client.Client
	base     *url.URL
	snapshot *models.Snapshot
}

func (c *stubClient) GetIdentity(ctx context.Context) (*models.Identity, error) { return nil, nil }
func (c *stubClient) GetSnapshot(ctx context.Context, key string) (*models.Snapshot, error) {
	return c.snapshot, nil
}
func (c *stubClient) BaseURL() *url.URL { return c.base }

func TestStart_RoutesShortKeyToFork(t *testing.T) {
	ctx := context.Background()
	store, err := localstore.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	a, out, _, _ := newTestApp("")
	a.location = "/abcde/"
	c := &stubClient{
		base:     &url.URL{Scheme: "http", Host: "host"},
		snapshot: &models.Snapshot{ShortKey: "abcde", Data: []byte("shared")},
	}
	a.wire(ctx, store, c, editor.NewMemorySurface())

	a.start(ctx)

	assert.Contains(t, out.String(), "OK: Shared drawing copied into a new, unsaved drawing")
	assert.Equal(t, "/", a.currentLocation())
	assert.Equal(t, []byte("shared"), a.surface.Serialize())

	st, err := store.State(ctx)
	require.NoError(t, err)
	assert.False(t, st.Bound())
	assert.False(t, st.Saved)
	assert.Equal(t, []byte("shared"), st.Content)
}

func TestWire_SurfaceChangesReachStore(t *testing.T) {
	ctx := context.Background()
	store, err := localstore.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	a, _, _, _ := newTestApp("")
	surface := editor.NewMemorySurface()
	a.wire(ctx, store, &stubClient{base: &url.URL{Scheme: "http", Host: "host"}}, surface)

	require.NoError(t, surface.Edit([]byte("stroke")))

	st, err := store.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("stroke"), st.Content)
}
