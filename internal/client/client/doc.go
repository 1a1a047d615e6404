// Package client talks to the drawing server.
//
// Client is the transport-agnostic contract used by the sync services;
// HTTPClient implements it over the server's JSON API. Every response
// carries an "error" string; a non-empty value (or a failing status code)
// becomes an *APIError that remembers the status. Callers match conditions
// with errors.Is against ErrUnavailable, ErrUnauthorized and ErrNotFound.
//
// The session cookie set by the server on login is kept in the client's
// cookie jar and replayed on every subsequent request.
package client
