// Package models defines the client-side data types shared by the remote
// client, the sync services and the CLI.
package models

import (
	"strings"
	"time"
)

// Credentials are submitted on login and signup.
type Credentials struct {
	Email    string
	Password string
}

// Identity is what the server reports for the current session cookie.
type Identity struct {
	UserID int64
	Email  string
}

// Session is the cached authenticated identity. It is replaced as a whole
// and never mutated in place.
type Session struct {
	UserID int64
	Email  string
}

// NewSession builds a Session from a server identity. A nil identity yields
// a nil Session.
func NewSession(id *Identity) *Session {
	if id == nil || id.Email == "" {
		return nil
	}
	return &Session{UserID: id.UserID, Email: id.Email}
}

// Username is the local part of the session email.
func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	name, _, _ := strings.Cut(s.Email, "@")
	return name
}

// SameUser reports whether s and other describe the same account. Two nil
// sessions are the same (both anonymous).
func (s *Session) SameUser(other *Session) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	return s.UserID == other.UserID && s.Email == other.Email
}

// RemoteDocument is a drawing stored on the server and owned by one user.
// Data is empty in listings.
type RemoteDocument struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Data      []byte
}

// DocumentMetadata holds the non-content fields that can be patched.
// Empty fields are left unchanged on the server.
type DocumentMetadata struct {
	Name string
}

// Snapshot is a write-once public copy of a drawing, addressed by ShortKey.
type Snapshot struct {
	ShortKey  string
	Data      []byte
	CreatedAt time.Time
}
