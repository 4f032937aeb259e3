package repository

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/author/model"
)

// Repository is the data-access contract for authors.
type Repository interface {
	List(ctx context.Context) ([]model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Author, error)
	Create(ctx context.Context, a *model.Author) error
	Update(ctx context.Context, id uuid.UUID, set map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}
