package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/client"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/config"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/editor"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/localstore"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/router"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/services"
	"github.com/dmitrijs2005/sketchkeeper/internal/filex"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	sessions services.SessionManager
	docs     services.DocumentSyncManager
	share    services.ShareLinkIssuer
	surface  editor.Surface
	router   *router.Router
	loader   *loader
	reader   *bufio.Reader
	out      io.Writer

	mu       sync.Mutex
	location string
	// prefill holds the credentials of a fresh signup for the login prompt.
	prefill *models.Credentials

	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	a := &App{
		config:   c,
		log:      log,
		loader:   &loader{log: log},
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		location: c.StartPath,
	}

	if filex.IsFileDSN(c.DatabasePath) {
		if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
			log.Error(ctx, "error preparing database directory", "error", err)
			return nil, err
		}
	}

	store, err := localstore.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout,
		client.WithLoader(a.loader), client.WithLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}

	surface, err := newSurface(c, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer, ok := surface.(io.Closer); ok {
		a.closers = append(a.closers, closer.Close)
	}

	a.wire(ctx, store, apiClient, surface)
	return a, nil
}

func newSurface(c *config.Config, log logging.Logger) (editor.Surface, error) {
	if c.DrawingPath == "" {
		return editor.NewMemorySurface(), nil
	}
	return editor.NewFileSurface(c.DrawingPath, log)
}

// wire builds the services on top of the given collaborators and registers
// the start routes.
func (a *App) wire(ctx context.Context, store services.LocalStore, c client.Client, surface editor.Surface) {
	a.surface = surface
	a.sessions = services.NewSessionManager(c, a.log)
	a.docs = services.NewDocumentSyncManager(services.DocumentDeps{
		Store:    store,
		Client:   c,
		Surface:  surface,
		Sessions: a.sessions,
		Prompter: &prompter{reader: a.reader, w: a.out},
		Location: services.LocationFunc(a.setLocation),
		Logger:   a.log,
	})
	a.share = services.NewShareLinkIssuer(c, surface, a.log)

	a.router = router.New()
	a.router.MustAdd(router.ShortKeyRoute, func(ctx context.Context, params map[string]string) {
		_ = a.Fork(ctx, params["shortkey"])
	})

	surface.OnChange(func() {
		a.docs.OnContentChanged(ctx)
	})
}

// Run restores the session and the local drawing, routes the start
// location and runs the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to sketchkeeper CLI (type 'help' for commands)")
	a.start(ctx)
	runREPL(ctx, a, func() string { return a.statusLine(ctx) }, a.reader)
}

func (a *App) start(ctx context.Context) {
	if s := a.sessions.Refresh(ctx); s != nil {
		a.good("Welcome back, %s", a.sessions.Username())
	}

	if _, err := a.docs.Init(ctx); err != nil {
		a.bad("cannot restore the local drawing: %v", err)
	}

	a.router.Handle(ctx, a.currentLocation())

	if w, ok := a.surface.(interface{ Start(context.Context) error }); ok {
		if err := w.Start(ctx); err != nil {
			a.bad("cannot watch the drawing file: %v", err)
		}
	}
}

// Close releases the store and the drawing file watcher. Errors are logged.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsLoggedIn()
}

func (a *App) setLocation(path string) {
	a.mu.Lock()
	a.location = path
	a.mu.Unlock()
}

func (a *App) currentLocation() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

func (a *App) statusLine(ctx context.Context) string {
	s := "anonymous"
	if a.isLoggedIn() {
		s = a.sessions.Username()
	}
	s += " " + a.currentLocation()

	st, err := a.docs.Status(ctx)
	if err != nil {
		return s
	}
	if st.ShowSaved && !st.Saved {
		s += " *"
	}
	if a.loader.busy() {
		s += " (busy)"
	}
	return s
}

func (a *App) good(format string, args ...any) {
	fmt.Fprintln(a.out, "OK: "+fmt.Sprintf(format, args...))
}

func (a *App) bad(format string, args ...any) {
	fmt.Fprintln(a.out, "Error: "+fmt.Sprintf(format, args...))
}

func (a *App) info(format string, args ...any) {
	fmt.Fprintln(a.out, fmt.Sprintf(format, args...))
}

// errMessage turns a service error into something a user can read.
func errMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return "unknown error"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrUnauthorized):
		return "please log in first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	}
	return err.Error()
}

// prompter asks the save-first question on the terminal.
type prompter struct {
	reader *bufio.Reader
	w      io.Writer
}

func (p *prompter) ConfirmSave(ctx context.Context) services.SaveDecision {
	switch GetChoice(p.reader, "You have unsaved changes. (s)ave first, (d)iscard them or (c)ancel?", "sdc", 'c', p.w) {
	case 's':
		return services.SaveFirst
	case 'd':
		return services.Discard
	}
	return services.Cancel
}

// loader counts requests in flight for the prompt.
type loader struct {
	log      logging.Logger
	inflight atomic.Int32
}

func (l *loader) Loading() {
	if l.inflight.Add(1) == 1 {
		l.log.Debug(context.Background(), "request started")
	}
}

func (l *loader) LoadingFinish() {
	if l.inflight.Add(-1) == 0 {
		l.log.Debug(context.Background(), "request finished")
	}
}

func (l *loader) busy() bool {
	return l.inflight.Load() > 0
}
