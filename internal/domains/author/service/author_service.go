package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/repository"
)

type authorService struct {
	repo repository.Repository
}

func NewAuthorService(repo repository.Repository) AuthorService {
	return &authorService{repo: repo}
}

func (s *authorService) List(ctx context.Context) ([]model.AuthorResponse, error) {
	authors, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.AuthorResponse, len(authors))
	for i, a := range authors {
		responses[i] = model.ToResponse(a)
	}
	return responses, nil
}

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*model.AuthorResponse, error) {
	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := model.ToResponse(*author)
	return &resp, nil
}

func (s *authorService) Create(ctx context.Context, req model.CreateAuthorRequest) (*model.AuthorResponse, error) {
	now := time.Now()
	author := &model.Author{
		ID:        uuid.New(),
		Name:      req.Name,
		Bio:       req.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, author); err != nil {
		return nil, err
	}

	resp := model.ToResponse(*author)
	return &resp, nil
}

func (s *authorService) Update(ctx context.Context, id uuid.UUID, req model.UpdateAuthorRequest) (*model.AuthorResponse, error) {
	set := map[string]any{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}

	if len(set) > 0 {
		if err := s.repo.Update(ctx, id, set); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

func (s *authorService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
