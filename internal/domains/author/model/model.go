package model

import (
	"time"

	"github.com/google/uuid"
)

// Author is the domain entity. Authors are independent of books and are
// only ever hard-deleted; they carry no soft-delete marker.
type Author struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
	Bio  *string   `db:"bio"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
