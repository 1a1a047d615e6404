// Package common contains shared constants and sentinel errors used across
// sketchkeeper components.
package common

// SessionCookieName is the cookie that carries the session token between
// the drawing server and its clients.
const SessionCookieName = "sessionKey"

// RequestIDHeaderName is set by the client on every outbound call and echoed
// in server logs.
const RequestIDHeaderName = "X-Request-ID"

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 5
