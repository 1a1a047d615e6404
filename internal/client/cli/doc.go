// Package cli provides the interactive sketchkeeper command-line client.
//
// It wires configuration, the local store, the remote client and the sync
// services, then runs a REPL that translates user commands into service
// calls and service outcomes into terminal messages.
//
// Typical flow: refresh the session, restore the drawing from the local
// mirror, route the start location (a shared snapshot key forks the
// drawing), then read commands until the user exits.
//
// Key features:
//   - Login / Signup / Logout
//   - New / Save / Open / Duplicate / Rename / Delete / List drawings
//   - Share the current drawing and fork a shared one
//   - Edit the drawing inline or in a watched file
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
