package services

import "fmt"

// Kind classifies the result of a document lifecycle operation.
type Kind int

const (
	KindFailed Kind = iota
	KindStarted
	KindNameRequired
	KindCreated
	KindSaved
	KindRenamed
	KindOpened
	KindDuplicated
	KindForked
	KindDeleted
	KindDeferred
	KindDeclined
	KindBusy
)

var kindNames = map[Kind]string{
	KindFailed:       "failed",
	KindStarted:      "started",
	KindNameRequired: "name required",
	KindCreated:      "created",
	KindSaved:        "saved",
	KindRenamed:      "renamed",
	KindOpened:       "opened",
	KindDuplicated:   "duplicated",
	KindForked:       "forked",
	KindDeleted:      "deleted",
	KindDeferred:     "deferred",
	KindDeclined:     "declined",
	KindBusy:         "busy",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Outcome is what a DocumentSyncManager operation reports back to the UI
// adapter. The core never renders anything itself.
//
// For KindDeferred, Save holds the outcome of the save that the guard ran
// instead of the requested operation.
type Outcome struct {
	Kind       Kind
	DocumentID string
	Err        error
	Save       *Outcome
}

func (o Outcome) OK() bool {
	switch o.Kind {
	case KindFailed, KindBusy, KindDeclined:
		return false
	case KindDeferred:
		return o.Save != nil && o.Save.OK()
	}
	return true
}

func failed(err error) Outcome {
	return Outcome{Kind: KindFailed, Err: err}
}

// SessionKind classifies the result of a SessionManager operation.
type SessionKind int

const (
	SessionFailed SessionKind = iota
	SessionLoggedIn
	SessionSignedUp
	SessionLoggedOut
	// SessionUnchanged means the remote call succeeded but the identity
	// refresh did not confirm the expected transition.
	SessionUnchanged
)

func (k SessionKind) String() string {
	switch k {
	case SessionFailed:
		return "failed"
	case SessionLoggedIn:
		return "logged in"
	case SessionSignedUp:
		return "signed up"
	case SessionLoggedOut:
		return "logged out"
	case SessionUnchanged:
		return "unchanged"
	}
	return fmt.Sprintf("session kind(%d)", int(k))
}
