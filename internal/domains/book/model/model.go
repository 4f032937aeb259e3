package model

import (
	"time"

	"github.com/google/uuid"
)

// BookStatus is the publication lifecycle of a book, orthogonal to its
// soft-delete state.
type BookStatus string

const (
	StatusDraft     BookStatus = "DRAFT"
	StatusPublished BookStatus = "PUBLISHED"
	StatusArchived  BookStatus = "ARCHIVED"
)

func (s BookStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// AuthorRole qualifies a book-to-author link.
type AuthorRole string

const (
	RoleAuthor      AuthorRole = "Author"
	RoleEditor      AuthorRole = "Editor"
	RoleContributor AuthorRole = "Contributor"
)

func (r AuthorRole) Valid() bool {
	switch r {
	case RoleAuthor, RoleEditor, RoleContributor:
		return true
	}
	return false
}

type Book struct {
	ID            uuid.UUID  `db:"id"`
	Slug          string     `db:"slug"`
	Title         string     `db:"title"`
	ISBN          *string    `db:"isbn"`
	PublishedDate *time.Time `db:"published_date"`
	Edition       *string    `db:"edition"`
	Format        *string    `db:"format"`
	Genre         *string    `db:"genre"`
	Description   *string    `db:"description"`
	Status        BookStatus `db:"status"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

// IsDeleted reports whether the soft-delete marker is set.
func (b Book) IsDeleted() bool {
	return b.DeletedAt != nil
}

// AuthorRef identifies an author to link and the role of the link.
type AuthorRef struct {
	AuthorID uuid.UUID
	Role     AuthorRole
}

// AuthorLink is a resolved book-to-author link, including the author's name
// for projection.
type AuthorLink struct {
	AuthorID uuid.UUID
	Name     string
	Role     AuthorRole
}

// BookWithAuthors is a book plus its resolved author links.
type BookWithAuthors struct {
	Book
	Authors []AuthorLink
}

// Sort keys accepted by the list operation.
const (
	SortByTitle     = "title"
	SortByCreatedAt = "createdAt"
)

// ListFilter is the repository-level list query: AND-combined equality
// filters, an allow-listed sort key, and a keyset cursor.
type ListFilter struct {
	AuthorID *uuid.UUID
	Status   *BookStatus
	Genre    *string
	Format   *string
	SortBy   string
	SortDesc bool
	Cursor   *uuid.UUID
	Take     int
}

// BookPage is one page of a cursor-paginated listing. NextCursor is nil
// when no further rows match.
type BookPage struct {
	Items      []BookWithAuthors
	Total      int64
	Limit      int
	NextCursor *uuid.UUID
}
