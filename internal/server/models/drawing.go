package models

import "time"

// Drawing is a mutable drawing owned by one user. Listings leave Data
// empty.
type Drawing struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Name      string    `db:"name"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

// DrawingPatch carries the fields of a partial update. Empty fields are
// left unchanged.
type DrawingPatch struct {
	Name string
	Data string
}
