// Package services implements the drawing server's business rules on top
// of the repositories: accounts and sessions, owner-scoped drawings and
// content-addressed snapshots.
package services
