// Package services holds the client's coordination logic: the session
// cache, the document sync state machine and share link issuing. Every
// operation reports an outcome value; rendering is left to the caller.
package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/client"
	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
)

// SessionEvent is delivered to observers after every identity refresh.
// Login is set when the refresh followed a successful login and the server
// confirmed the new identity.
type SessionEvent struct {
	Prev  *models.Session
	Next  *models.Session
	Login bool
}

// Switched reports whether the event must drop the current document
// binding: any login, or a session replaced by a different one or by none.
func (e SessionEvent) Switched() bool {
	if e.Login {
		return true
	}
	return e.Prev != nil && !e.Prev.SameUser(e.Next)
}

// SessionObserver is notified after every identity refresh.
type SessionObserver interface {
	SessionChanged(ctx context.Context, ev SessionEvent)
}

// SessionOutcome is the result of a login, signup or logout.
// Credentials is set on successful signup so the adapter can pre-fill the
// login prompt.
type SessionOutcome struct {
	Kind        SessionKind
	Session     *models.Session
	Credentials *models.Credentials
	Err         error
}

// SessionManager caches the server-confirmed identity.
//
// Contract:
//   - Refresh: re-read the identity; never fails.
//   - Login: authenticate, then refresh with the login marker.
//   - Signup: create the account only; the caller logs in afterwards.
//   - Logout: end the session, then refresh.
//   - Subscribe: observers are called synchronously after each refresh.
type SessionManager interface {
	// Refresh re-reads the identity from the server. Failures are logged
	// and treated as "no session"; they are never reported.
	Refresh(ctx context.Context) *models.Session
	Login(ctx context.Context, creds models.Credentials) SessionOutcome
	Signup(ctx context.Context, creds models.Credentials) SessionOutcome
	Logout(ctx context.Context) SessionOutcome

	Current() *models.Session
	IsLoggedIn() bool
	Username() string
	Subscribe(o SessionObserver)
}

type sessionManager struct {
	client client.Client
	log    logging.Logger

	mu        sync.RWMutex
	session   *models.Session
	observers []SessionObserver
}

// NewSessionManager returns a SessionManager with no session; call Refresh
// to load one.
func NewSessionManager(c client.Client, log logging.Logger) SessionManager {
	return &sessionManager{client: c, log: log}
}

func (m *sessionManager) Subscribe(o SessionObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *sessionManager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *sessionManager) IsLoggedIn() bool {
	return m.Current() != nil
}

func (m *sessionManager) Username() string {
	return m.Current().Username()
}

func (m *sessionManager) Refresh(ctx context.Context) *models.Session {
	return m.refresh(ctx, false)
}

func (m *sessionManager) refresh(ctx context.Context, login bool) *models.Session {
	identity, err := m.client.GetIdentity(ctx)
	if err != nil {
		m.log.Warn(ctx, "identity refresh failed", "error", err)
		identity = nil
	}
	next := models.NewSession(identity)

	m.mu.Lock()
	prev := m.session
	m.session = next
	observers := append([]SessionObserver(nil), m.observers...)
	m.mu.Unlock()

	ev := SessionEvent{Prev: prev, Next: next, Login: login && next != nil}
	for _, o := range observers {
		o.SessionChanged(ctx, ev)
	}
	return next
}

func (m *sessionManager) Login(ctx context.Context, creds models.Credentials) SessionOutcome {
	if err := m.client.Login(ctx, creds); err != nil {
		return SessionOutcome{Kind: SessionFailed, Err: err}
	}

	s := m.refresh(ctx, true)
	if s == nil {
		m.log.Warn(ctx, "login accepted but no identity reported", "email", creds.Email)
		return SessionOutcome{Kind: SessionUnchanged}
	}
	m.log.Info(ctx, "logged in", "user_id", s.UserID)
	return SessionOutcome{Kind: SessionLoggedIn, Session: s}
}

func (m *sessionManager) Signup(ctx context.Context, creds models.Credentials) SessionOutcome {
	if err := m.client.Signup(ctx, creds); err != nil {
		return SessionOutcome{Kind: SessionFailed, Err: err}
	}
	prefill := creds
	return SessionOutcome{Kind: SessionSignedUp, Credentials: &prefill}
}

func (m *sessionManager) Logout(ctx context.Context) SessionOutcome {
	if err := m.client.Logout(ctx); err != nil {
		return SessionOutcome{Kind: SessionFailed, Err: err}
	}

	if s := m.refresh(ctx, false); s != nil {
		return SessionOutcome{Kind: SessionUnchanged, Session: s}
	}
	return SessionOutcome{Kind: SessionLoggedOut}
}
