package service

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/book/model"
)

type BookService interface {
	List(ctx context.Context, q model.ListBooksQuery) (*model.BookPageResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)
	Create(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
	AddAuthor(ctx context.Context, bookID uuid.UUID, req model.AttachAuthorRequest) (*model.BookResponse, error)
	RemoveAuthor(ctx context.Context, bookID, authorID uuid.UUID) (*model.BookResponse, error)
}
