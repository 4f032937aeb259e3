package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	maxTitleLength       = 255
	maxISBNLength        = 20
	maxShortFieldLength  = 100
	maxDescriptionLength = 1000

	DefaultTake = 10
	MaxTake     = 100
)

// AuthorRefInput links one author with a role in a create/attach payload.
type AuthorRefInput struct {
	AuthorID string `json:"authorId"`
	Role     string `json:"role"`
}

func (r AuthorRefInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AuthorID, validation.Required, is.UUID),
		validation.Field(&r.Role, validation.Required, validation.In(
			string(RoleAuthor), string(RoleEditor), string(RoleContributor),
		)),
	)
}

// CreateBookRequest - POST /v1/books
type CreateBookRequest struct {
	Title         string           `json:"title"`
	ISBN          *string          `json:"isbn,omitempty"`
	PublishedDate *time.Time       `json:"publishedDate,omitempty"`
	Edition       *string          `json:"edition,omitempty"`
	Format        *string          `json:"format,omitempty"`
	Genre         *string          `json:"genre,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Status        *string          `json:"status,omitempty"`
	Authors       []AuthorRefInput `json:"authors,omitempty"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&r.ISBN, validation.Length(1, maxISBNLength)),
		validation.Field(&r.Edition, validation.Length(0, maxShortFieldLength)),
		validation.Field(&r.Format, validation.Length(0, maxShortFieldLength)),
		validation.Field(&r.Genre, validation.Length(0, maxShortFieldLength)),
		validation.Field(&r.Description, validation.Length(0, maxDescriptionLength)),
		validation.Field(&r.Status, validation.In(
			string(StatusDraft), string(StatusPublished), string(StatusArchived),
		)),
		validation.Field(&r.Authors),
	)
}

// UpdateBookRequest - PUT /v1/books/:id. Nil fields are left unchanged;
// there is no way to clear a nullable column through this payload, only
// to overwrite it.
type UpdateBookRequest struct {
	Title         *string    `json:"title,omitempty"`
	ISBN          *string    `json:"isbn,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Edition       *string    `json:"edition,omitempty"`
	Format        *string    `json:"format,omitempty"`
	Genre         *string    `json:"genre,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
		validation.Field(&r.ISBN, validation.Length(1, maxISBNLength)),
		validation.Field(&r.Edition, validation.Length(0, maxShortFieldLength)),
		validation.Field(&r.Format, validation.Length(0, maxShortFieldLength)),
		validation.Field(&r.Genre, validation.Length(0, maxShortFieldLength)),
		validation.Field(&r.Description, validation.Length(0, maxDescriptionLength)),
		validation.Field(&r.Status, validation.In(
			string(StatusDraft), string(StatusPublished), string(StatusArchived),
		)),
	)
}

// AttachAuthorRequest - POST /v1/books/:id/authors
type AttachAuthorRequest struct {
	AuthorID string `json:"authorId"`
	Role     string `json:"role"`
}

func (r AttachAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AuthorID, validation.Required, is.UUID),
		validation.Field(&r.Role, validation.Required, validation.In(
			string(RoleAuthor), string(RoleEditor), string(RoleContributor),
		)),
	)
}

// ListBooksQuery - GET /v1/books query string.
type ListBooksQuery struct {
	AuthorID  string `form:"authorId" json:"authorId,omitempty"`
	Status    string `form:"status" json:"status,omitempty"`
	Genre     string `form:"genre" json:"genre,omitempty"`
	Format    string `form:"format" json:"format,omitempty"`
	SortBy    string `form:"sortBy" json:"sortBy,omitempty"`
	SortOrder string `form:"sortOrder" json:"sortOrder,omitempty"`
	Cursor    string `form:"cursor" json:"cursor,omitempty"`
	Take      int    `form:"take" json:"take,omitempty"`
}

func (q ListBooksQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.AuthorID, is.UUID),
		validation.Field(&q.Status, validation.In(
			string(StatusDraft), string(StatusPublished), string(StatusArchived),
		)),
		validation.Field(&q.SortBy, validation.In(SortByTitle, SortByCreatedAt)),
		validation.Field(&q.SortOrder, validation.In("asc", "desc")),
		validation.Field(&q.Cursor, is.UUID),
		validation.Field(&q.Take, validation.Min(0), validation.Max(MaxTake)),
	)
}
