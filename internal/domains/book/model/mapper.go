package model

import (
	"time"
)

// BookAuthorResponse is one resolved author link in the API shape.
type BookAuthorResponse struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// BookResponse is the API shape of a book: nullable columns become absent
// fields, timestamps become ISO strings.
type BookResponse struct {
	ID            string               `json:"id"`
	Slug          string               `json:"slug"`
	Title         string               `json:"title"`
	ISBN          *string              `json:"isbn,omitempty"`
	PublishedDate *string              `json:"publishedDate,omitempty"`
	Edition       *string              `json:"edition,omitempty"`
	Format        *string              `json:"format,omitempty"`
	Genre         *string              `json:"genre,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Status        string               `json:"status"`
	Authors       []BookAuthorResponse `json:"authors"`
	CreatedAt     string               `json:"createdAt"`
	UpdatedAt     string               `json:"updatedAt"`
	DeletedAt     *string              `json:"deletedAt,omitempty"`
}

// BookPageResponse is the paginated list payload.
type BookPageResponse struct {
	Items      []BookResponse `json:"items"`
	Total      int64          `json:"total"`
	Limit      int            `json:"limit"`
	NextCursor *string        `json:"nextCursor"`
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := isoTime(*t)
	return &s
}

// ToResponse maps a stored book and its author links to the API projection.
func ToResponse(b BookWithAuthors) BookResponse {
	authors := make([]BookAuthorResponse, len(b.Authors))
	for i, link := range b.Authors {
		authors[i] = BookAuthorResponse{
			AuthorID: link.AuthorID.String(),
			Name:     link.Name,
			Role:     string(link.Role),
		}
	}

	return BookResponse{
		ID:            b.ID.String(),
		Slug:          b.Slug,
		Title:         b.Title,
		ISBN:          b.ISBN,
		PublishedDate: isoTimePtr(b.PublishedDate),
		Edition:       b.Edition,
		Format:        b.Format,
		Genre:         b.Genre,
		Description:   b.Description,
		Status:        string(b.Status),
		Authors:       authors,
		CreatedAt:     isoTime(b.CreatedAt),
		UpdatedAt:     isoTime(b.UpdatedAt),
		DeletedAt:     isoTimePtr(b.DeletedAt),
	}
}

// ToPageResponse maps a repository page to the API payload.
func ToPageResponse(page BookPage) BookPageResponse {
	items := make([]BookResponse, len(page.Items))
	for i, b := range page.Items {
		items[i] = ToResponse(b)
	}

	var next *string
	if page.NextCursor != nil {
		s := page.NextCursor.String()
		next = &s
	}

	return BookPageResponse{
		Items:      items,
		Total:      page.Total,
		Limit:      page.Limit,
		NextCursor: next,
	}
}
