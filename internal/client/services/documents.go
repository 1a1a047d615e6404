package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/client"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/localstore"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
)

// LocalStore is the durable document state used by DocumentSyncManager.
type LocalStore interface {
	State(ctx context.Context) (localstore.State, error)
	Apply(ctx context.Context, changes ...localstore.Change) error
}

// Surface is the editing surface that owns the drawing content.
type Surface interface {
	Serialize() []byte
	Restore(data []byte) error
	Empty() error
	IsEmpty() bool
}

// SaveDecision is the user's answer when unsaved work is about to be
// replaced.
type SaveDecision int

const (
	// SaveFirst saves the current drawing instead of continuing.
	SaveFirst SaveDecision = iota
	// Discard continues and drops the unsaved edits.
	Discard
	// Cancel abandons the requested operation and keeps everything as is.
	Cancel
)

// Prompter asks the user what to do with unsaved work.
type Prompter interface {
	ConfirmSave(ctx context.Context) SaveDecision
}

// Location is the visible address of the application.
type Location interface {
	Replace(path string)
}

// LocationFunc adapts a plain function to Location.
type LocationFunc func(path string)

// Replace calls f(path).
func (f LocationFunc) Replace(path string) { f(path) }

// Transition is the answer of the unsaved-work guard.
type Transition int

const (
	// Proceed lets the caller continue with its operation.
	Proceed Transition = iota
	// DeferredToSavePrompt means the user chose to save first. The caller
	// must abandon its own operation; the save has already been attempted.
	DeferredToSavePrompt
	// Declined means the user cancelled. The caller must abandon its
	// operation without touching anything.
	Declined
)

// Status is the document state as the UI should render it.
type Status struct {
	DocumentID string
	Bound      bool
	Saved      bool
	// ShowSaved is false for anonymous users, whose edits are never synced.
	ShowSaved bool
}

// DocumentSyncManager keeps the locally persisted document state
// consistent with the editing surface and the server.
//
// Contract:
//   - Init/Status: read the persisted state; Init also restores an empty surface.
//   - StartNew/Open/Duplicate: run the unsaved-work guard first.
//   - SaveOrCreate/Create/Update/Rename/Delete: need a session.
//   - ForkFromShare: needs no session and is not guarded.
//   - Only one lifecycle operation runs at a time; others report KindBusy.
//   - OnContentChanged may be called from any goroutine.
//
// Lifecycle operations never return errors; failures come back as
// KindFailed outcomes carrying the cause.
type DocumentSyncManager interface {
	SessionObserver

	// Init restores the surface from the content mirror when the surface
	// is empty and primes the saved flag cache. Call it once at startup.
	Init(ctx context.Context) (Status, error)
	// Status reports the persisted state.
	Status(ctx context.Context) (Status, error)

	// StartNew clears the surface and the binding. The empty drawing
	// counts as saved.
	StartNew(ctx context.Context) Outcome
	// SaveOrCreate mirrors the surface locally, then updates the bound
	// document or asks for a name with KindNameRequired.
	SaveOrCreate(ctx context.Context) Outcome
	// Create stores the surface as a new remote document and binds to it.
	Create(ctx context.Context, name string) Outcome
	// Update pushes content to document id. The saved flag is only set
	// when id is still current and the surface has not changed meanwhile.
	Update(ctx context.Context, id string, content []byte) Outcome
	// Rename changes the remote name only.
	Rename(ctx context.Context, id string, name string) Outcome
	// Open loads document id onto the surface and binds to it as saved.
	Open(ctx context.Context, id string) Outcome
	// Duplicate loads document id as a new unbound, unsaved drawing.
	Duplicate(ctx context.Context, id string) Outcome
	// ForkFromShare loads a snapshot as a new unbound, unsaved drawing and
	// resets the location to "/".
	ForkFromShare(ctx context.Context, shortKey string) Outcome
	// Delete removes document id remotely and unbinds it if current. The
	// saved flag is left as it was. onComplete runs only on success.
	Delete(ctx context.Context, id string, onComplete func()) Outcome
	// List returns the user's documents, never nil on success.
	List(ctx context.Context) ([]models.RemoteDocument, error)

	// RequestGuardedTransition asks the user about unsaved work when a
	// session exists and the saved flag is clear. For SaveFirst the
	// returned outcome is the save that was run.
	RequestGuardedTransition(ctx context.Context) (Transition, *Outcome)
	// OnContentChanged mirrors the surface into the local store.
	OnContentChanged(ctx context.Context)
	// InvalidateCurrent drops the binding and keeps content and flag.
	InvalidateCurrent(ctx context.Context) error
}

// DocumentDeps are the collaborators of a DocumentSyncManager. Location
// and Logger may be nil.
type DocumentDeps struct {
	Store    LocalStore
	Client   client.Client
	Surface  Surface
	Sessions SessionManager
	Prompter Prompter
	Location Location
	Logger   logging.Logger
}

type documentSyncManager struct {
	store    LocalStore
	client   client.Client
	surface  Surface
	sessions SessionManager
	prompter Prompter
	location Location
	log      logging.Logger

	mu sync.Mutex
	// busy is set while a lifecycle operation is in flight.
	busy bool

	// flagMu is held across every store write of the saved flag and the
	// matching cache update, so the cache never lags the store.
	flagMu sync.Mutex
	// saved caches the persisted saved flag so content notifications only
	// write it when it flips. Guarded by flagMu.
	saved      bool
	savedKnown bool
}

// NewDocumentSyncManager wires the manager and subscribes it to session
// changes.
func NewDocumentSyncManager(d DocumentDeps) DocumentSyncManager {
	m := &documentSyncManager{
		store:    d.Store,
		client:   d.Client,
		surface:  d.Surface,
		sessions: d.Sessions,
		prompter: d.Prompter,
		location: d.Location,
		log:      d.Logger,
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	if m.location == nil {
		m.location = LocationFunc(func(string) {})
	}
	d.Sessions.Subscribe(m)
	return m
}

func (m *documentSyncManager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return false
	}
	m.busy = true
	return true
}

func (m *documentSyncManager) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// rememberSaved records the persisted flag. Callers hold flagMu.
func (m *documentSyncManager) rememberSaved(saved bool) {
	m.saved, m.savedKnown = saved, true
}

func (m *documentSyncManager) loggedIn() bool {
	return m.sessions.Current() != nil
}

// Init restores the surface from the content mirror when the surface
// starts out empty, and primes the saved flag cache.
func (m *documentSyncManager) Init(ctx context.Context) (Status, error) {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	st, err := m.store.State(ctx)
	if err != nil {
		return Status{}, err
	}
	if len(st.Content) > 0 && m.surface.IsEmpty() {
		if err := m.surface.Restore(st.Content); err != nil {
			return Status{}, fmt.Errorf("restore local content: %w", err)
		}
	}
	m.rememberSaved(st.Saved)
	return m.status(st), nil
}

func (m *documentSyncManager) Status(ctx context.Context) (Status, error) {
	st, err := m.store.State(ctx)
	if err != nil {
		return Status{}, err
	}
	return m.status(st), nil
}

func (m *documentSyncManager) status(st localstore.State) Status {
	return Status{
		DocumentID: st.DocumentID,
		Bound:      st.Bound(),
		Saved:      st.Saved,
		ShowSaved:  m.loggedIn(),
	}
}

func (m *documentSyncManager) RequestGuardedTransition(ctx context.Context) (Transition, *Outcome) {
	if !m.loggedIn() {
		return Proceed, nil
	}

	st, err := m.store.State(ctx)
	if err != nil {
		m.log.Warn(ctx, "cannot read saved flag, asking the user", "error", err)
	} else if st.Saved {
		return Proceed, nil
	}

	switch m.prompter.ConfirmSave(ctx) {
	case SaveFirst:
		out := m.SaveOrCreate(ctx)
		return DeferredToSavePrompt, &out
	case Cancel:
		return Declined, nil
	default:
		return Proceed, nil
	}
}

func (m *documentSyncManager) guard(ctx context.Context) (Outcome, bool) {
	switch t, save := m.RequestGuardedTransition(ctx); t {
	case DeferredToSavePrompt:
		return Outcome{Kind: KindDeferred, Save: save}, false
	case Declined:
		return Outcome{Kind: KindDeclined}, false
	}
	return Outcome{}, true
}

func (m *documentSyncManager) StartNew(ctx context.Context) Outcome {
	if out, ok := m.guard(ctx); !ok {
		return out
	}
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	if err := m.surface.Empty(); err != nil {
		return failed(fmt.Errorf("clear drawing: %w", err))
	}
	err := m.store.Apply(ctx,
		localstore.WithoutDocumentID(),
		localstore.WithContent(m.surface.Serialize()),
		localstore.WithSaved(true),
	)
	if err != nil {
		return failed(err)
	}
	m.rememberSaved(true)
	return Outcome{Kind: KindStarted}
}

func (m *documentSyncManager) SaveOrCreate(ctx context.Context) Outcome {
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	content := m.surface.Serialize()
	if err := m.store.Apply(ctx, localstore.WithContent(content)); err != nil {
		return failed(err)
	}
	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}

	st, err := m.store.State(ctx)
	if err != nil {
		return failed(err)
	}
	if !st.Bound() {
		return Outcome{Kind: KindNameRequired}
	}
	return m.update(ctx, st.DocumentID, content)
}

func (m *documentSyncManager) Create(ctx context.Context, name string) Outcome {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{Kind: KindNameRequired}
	}
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}

	content := m.surface.Serialize()
	if err := m.store.Apply(ctx, localstore.WithContent(content)); err != nil {
		return failed(err)
	}

	id, err := m.client.CreateDocument(ctx, name, content)
	if err != nil {
		return failed(err)
	}

	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	changes := []localstore.Change{localstore.WithDocumentID(id)}
	saved := bytes.Equal(m.surface.Serialize(), content)
	changes = append(changes, localstore.WithSaved(saved))
	if err := m.store.Apply(ctx, changes...); err != nil {
		return failed(err)
	}
	m.rememberSaved(saved)
	m.log.Info(ctx, "document created", "id", id)
	return Outcome{Kind: KindCreated, DocumentID: id}
}

func (m *documentSyncManager) Update(ctx context.Context, id string, content []byte) Outcome {
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}
	return m.update(ctx, id, content)
}

// update patches the remote data. The saved flag is only set when id is
// still the current document and the surface has not moved on since
// content was taken.
func (m *documentSyncManager) update(ctx context.Context, id string, content []byte) Outcome {
	if err := m.client.UpdateDocumentData(ctx, id, content); err != nil {
		return failed(err)
	}

	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	st, err := m.store.State(ctx)
	if err != nil {
		return failed(err)
	}
	if st.DocumentID == id && bytes.Equal(m.surface.Serialize(), content) {
		if err := m.store.Apply(ctx, localstore.WithSaved(true)); err != nil {
			return failed(err)
		}
		m.rememberSaved(true)
	}
	return Outcome{Kind: KindSaved, DocumentID: id}
}

func (m *documentSyncManager) Rename(ctx context.Context, id string, name string) Outcome {
	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{Kind: KindNameRequired, DocumentID: id}
	}
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}
	if err := m.client.UpdateDocumentMetadata(ctx, id, models.DocumentMetadata{Name: name}); err != nil {
		return failed(err)
	}
	return Outcome{Kind: KindRenamed, DocumentID: id}
}

func (m *documentSyncManager) Open(ctx context.Context, id string) Outcome {
	if out, ok := m.guard(ctx); !ok {
		return out
	}
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}
	doc, err := m.client.GetDocument(ctx, id)
	if err != nil {
		return failed(err)
	}
	if err := m.adopt(ctx, doc.Data, id, true); err != nil {
		return failed(err)
	}
	return Outcome{Kind: KindOpened, DocumentID: id}
}

func (m *documentSyncManager) Duplicate(ctx context.Context, id string) Outcome {
	if out, ok := m.guard(ctx); !ok {
		return out
	}
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}
	doc, err := m.client.GetDocument(ctx, id)
	if err != nil {
		return failed(err)
	}
	if err := m.adopt(ctx, doc.Data, "", false); err != nil {
		return failed(err)
	}
	return Outcome{Kind: KindDuplicated}
}

func (m *documentSyncManager) ForkFromShare(ctx context.Context, shortKey string) Outcome {
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	snap, err := m.client.GetSnapshot(ctx, shortKey)
	if err != nil {
		return failed(err)
	}
	if err := m.adopt(ctx, snap.Data, "", false); err != nil {
		return failed(err)
	}
	m.location.Replace("/")
	return Outcome{Kind: KindForked}
}

// adopt replaces the surface content with data and persists the new
// binding in one transaction. If persisting fails the surface is put back.
func (m *documentSyncManager) adopt(ctx context.Context, data []byte, id string, saved bool) error {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	previous := m.surface.Serialize()
	if err := m.surface.Restore(data); err != nil {
		return fmt.Errorf("restore drawing: %w", err)
	}

	err := m.store.Apply(ctx,
		localstore.WithContent(data),
		localstore.WithDocumentID(id),
		localstore.WithSaved(saved),
	)
	if err != nil {
		if rerr := m.surface.Restore(previous); rerr != nil {
			m.log.Error(ctx, "cannot roll back drawing", "error", rerr)
		}
		return err
	}
	m.rememberSaved(saved)
	return nil
}

func (m *documentSyncManager) Delete(ctx context.Context, id string, onComplete func()) Outcome {
	out := m.delete(ctx, id)
	if out.Kind == KindDeleted && onComplete != nil {
		onComplete()
	}
	return out
}

func (m *documentSyncManager) delete(ctx context.Context, id string) Outcome {
	if !m.begin() {
		return Outcome{Kind: KindBusy}
	}
	defer m.end()

	if !m.loggedIn() {
		return failed(client.ErrUnauthorized)
	}
	if err := m.client.DeleteDocument(ctx, id); err != nil {
		return failed(err)
	}

	st, err := m.store.State(ctx)
	if err != nil {
		return failed(err)
	}
	if st.DocumentID == id {
		// The saved flag is left as it was.
		if err := m.store.Apply(ctx, localstore.WithoutDocumentID()); err != nil {
			return failed(err)
		}
	}
	return Outcome{Kind: KindDeleted, DocumentID: id}
}

func (m *documentSyncManager) List(ctx context.Context) ([]models.RemoteDocument, error) {
	if !m.loggedIn() {
		return nil, client.ErrUnauthorized
	}
	docs, err := m.client.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.RemoteDocument{}
	}
	return docs, nil
}

// OnContentChanged mirrors the surface into the local store. An empty
// surface counts as saved. It runs at edit frequency, so the saved flag
// is only written when it actually flips.
func (m *documentSyncManager) OnContentChanged(ctx context.Context) {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()

	content := m.surface.Serialize()
	saved := m.surface.IsEmpty()
	flip := !m.savedKnown || m.saved != saved

	changes := []localstore.Change{localstore.WithContent(content)}
	if flip {
		changes = append(changes, localstore.WithSaved(saved))
	}
	if err := m.store.Apply(ctx, changes...); err != nil {
		m.log.Error(ctx, "cannot mirror drawing locally", "error", err)
		return
	}
	if flip {
		m.rememberSaved(saved)
	}
}

func (m *documentSyncManager) InvalidateCurrent(ctx context.Context) error {
	return m.store.Apply(ctx, localstore.WithoutDocumentID())
}

func (m *documentSyncManager) SessionChanged(ctx context.Context, ev SessionEvent) {
	if !ev.Switched() {
		return
	}
	if err := m.InvalidateCurrent(ctx); err != nil {
		m.log.Error(ctx, "cannot drop document binding", "error", err)
	}
}
