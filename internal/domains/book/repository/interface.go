package repository

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/book/model"
)

// Repository is the data-access contract for books. Reads go through the
// soft-delete guard: GetByID and List see live rows only, GetAnyByID sees
// every row regardless of deletion state.
type Repository interface {
	List(ctx context.Context, filter model.ListFilter) ([]model.Book, int64, *uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetAnyByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// AuthorsFor resolves the author links of the given books, keyed by
	// book id.
	AuthorsFor(ctx context.Context, bookIDs []uuid.UUID) (map[uuid.UUID][]model.AuthorLink, error)

	// SlugTaken and ISBNTaken probe uniqueness across ALL rows, deleted
	// included, matching the store's constraints.
	SlugTaken(ctx context.Context, slug string) (bool, error)
	ISBNTaken(ctx context.Context, isbn string, excludeID *uuid.UUID) (bool, error)

	// Create inserts the book and its author links in one transaction.
	Create(ctx context.Context, book *model.Book, refs []model.AuthorRef) error
	Update(ctx context.Context, id uuid.UUID, set map[string]any) error

	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error

	AddAuthor(ctx context.Context, bookID, authorID uuid.UUID, role model.AuthorRole) error
	RemoveAuthor(ctx context.Context, bookID, authorID uuid.UUID) error
}
