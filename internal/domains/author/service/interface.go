package service

import (
	"context"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/author/model"
)

type AuthorService interface {
	List(ctx context.Context) ([]model.AuthorResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.AuthorResponse, error)
	Create(ctx context.Context, req model.CreateAuthorRequest) (*model.AuthorResponse, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateAuthorRequest) (*model.AuthorResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
