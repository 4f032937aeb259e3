package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/storage"
	"bookshelf-backend/internal/storage/query"
)

const table = "authors"

var columns = []string{
	"authors.id",
	"authors.name",
	"authors.bio",
	"authors.created_at",
	"authors.updated_at",
}

type postgresRepository struct {
	store storage.Store
}

func NewPostgresRepository(store storage.Store) Repository {
	return &postgresRepository{store: store}
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Author, error) {
	rows, err := r.store.Select(ctx, query.Spec{
		From:    table,
		Columns: columns,
		OrderBy: []query.Order{query.Desc("authors.created_at"), query.Asc("authors.id")},
	})
	if err != nil {
		return nil, err
	}

	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return nil, fmt.Errorf("collect authors: %w", err)
	}
	return authors, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	rows, err := r.store.Select(ctx, query.Spec{
		From:    table,
		Columns: columns,
		Where:   query.Eq("authors.id", id),
	})
	if err != nil {
		return nil, err
	}

	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return nil, fmt.Errorf("collect author: %w", err)
	}
	if len(authors) == 0 {
		return nil, model.ErrAuthorNotFound
	}
	return &authors[0], nil
}

func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Author, error) {
	if len(ids) == 0 {
		return []model.Author{}, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	rows, err := r.store.Select(ctx, query.Spec{
		From:    table,
		Columns: columns,
		Where:   query.In("authors.id", values...),
	})
	if err != nil {
		return nil, err
	}

	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Author])
	if err != nil {
		return nil, fmt.Errorf("collect authors: %w", err)
	}
	return authors, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Author) error {
	return r.store.Insert(ctx, table, map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"bio":        a.Bio,
		"created_at": a.CreatedAt,
		"updated_at": a.UpdatedAt,
	})
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, set map[string]any) error {
	set["updated_at"] = time.Now()

	affected, err := r.store.Update(ctx, query.Spec{
		From:  table,
		Where: query.Eq("id", id),
	}, set)
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.store.Delete(ctx, query.Spec{
		From:  table,
		Where: query.Eq("id", id),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}
