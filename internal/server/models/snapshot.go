package models

import "time"

// Snapshot is an immutable drawing addressed by a short key derived from
// the SHA-512 hash of its data.
type Snapshot struct {
	ShortKey  string    `db:"short_key" json:"short_key"`
	Hash      string    `db:"hash" json:"hash"`
	Data      string    `db:"data" json:"data"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
