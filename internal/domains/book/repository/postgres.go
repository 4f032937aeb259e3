package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/storage"
	"bookshelf-backend/internal/storage/query"
	"bookshelf-backend/pkg/database"
)

const (
	booksTable       = "books"
	bookAuthorsTable = "book_authors"
)

var bookColumns = []string{
	"books.id",
	"books.slug",
	"books.title",
	"books.isbn",
	"books.published_date",
	"books.edition",
	"books.format",
	"books.genre",
	"books.description",
	"books.status",
	"books.created_at",
	"books.updated_at",
	"books.deleted_at",
}

type postgresRepository struct {
	pool  *pgxpool.Pool
	store *storage.SoftDeleteStore
}

func NewPostgresRepository(pool *pgxpool.Pool, store *storage.SoftDeleteStore) Repository {
	return &postgresRepository{pool: pool, store: store}
}

// allRows matches every deletion state; adding it to a filter disables the
// default live-only visibility.
func allRows() query.Predicate {
	return query.Any("books." + storage.DeletedColumn)
}

func sortColumn(sortBy string) string {
	if sortBy == model.SortByTitle {
		return "books.title"
	}
	return "books.created_at"
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.Book, int64, *uuid.UUID, error) {
	var preds []query.Predicate
	var joins []query.Join
	distinct := false

	if filter.AuthorID != nil {
		joins = append(joins, query.Join{
			Table:   bookAuthorsTable,
			OnLeft:  "books.id",
			OnRight: "book_authors.book_id",
		})
		preds = append(preds, query.Eq("book_authors.author_id", *filter.AuthorID))
		distinct = true
	}
	if filter.Status != nil {
		preds = append(preds, query.Eq("books.status", string(*filter.Status)))
	}
	if filter.Genre != nil {
		preds = append(preds, query.Eq("books.genre", *filter.Genre))
	}
	if filter.Format != nil {
		preds = append(preds, query.Eq("books.format", *filter.Format))
	}

	baseWhere := query.And(preds...)

	total, err := r.store.Count(ctx, query.Spec{
		From:     booksTable,
		Columns:  []string{"books.id"},
		Joins:    joins,
		Where:    baseWhere,
		Distinct: distinct,
	})
	if err != nil {
		return nil, 0, nil, err
	}

	sortCol := sortColumn(filter.SortBy)
	where := baseWhere
	if filter.Cursor != nil {
		keyset, err := r.keysetPredicate(ctx, sortCol, *filter.Cursor, filter.SortDesc)
		if err != nil {
			return nil, 0, nil, err
		}
		where = query.And(baseWhere, keyset)
	}

	order := []query.Order{
		{Column: sortCol, Desc: filter.SortDesc},
		{Column: "books.id", Desc: filter.SortDesc},
	}

	// One extra row decides whether a next page exists.
	rows, err := r.store.Select(ctx, query.Spec{
		From:     booksTable,
		Columns:  bookColumns,
		Joins:    joins,
		Where:    where,
		OrderBy:  order,
		Limit:    uint(filter.Take) + 1,
		Distinct: distinct,
	})
	if err != nil {
		return nil, 0, nil, err
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, 0, nil, fmt.Errorf("collect books: %w", err)
	}

	var nextCursor *uuid.UUID
	if len(books) > filter.Take {
		books = books[:filter.Take]
		last := books[len(books)-1].ID
		nextCursor = &last
	}

	return books, total, nextCursor, nil
}

// keysetPredicate resolves the cursor row's sort-key value and builds the
// exclusive continuation predicate (key, id) beyond (cursorKey, cursorId).
// The cursor row is looked up regardless of deletion state so pagination
// survives a row being soft-deleted between pages.
func (r *postgresRepository) keysetPredicate(ctx context.Context, sortCol string, cursor uuid.UUID, desc bool) (query.Predicate, error) {
	rows, err := r.store.Select(ctx, query.Spec{
		From:    booksTable,
		Columns: []string{sortCol},
		Where:   query.And(query.Eq("books.id", cursor), allRows()),
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, model.ErrInvalidCursor
	}
	var key any
	if err := rows.Scan(&key); err != nil {
		return nil, fmt.Errorf("scan cursor row: %w", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if desc {
		return query.Or(
			query.Lt(sortCol, key),
			query.And(query.Eq(sortCol, key), query.Lt("books.id", cursor)),
		), nil
	}
	return query.Or(
		query.Gt(sortCol, key),
		query.And(query.Eq(sortCol, key), query.Gt("books.id", cursor)),
	), nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return r.getBy(ctx, query.Eq("books.id", id))
}

func (r *postgresRepository) GetAnyByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return r.getBy(ctx, query.And(query.Eq("books.id", id), allRows()))
}

func (r *postgresRepository) getBy(ctx context.Context, where query.Predicate) (*model.Book, error) {
	rows, err := r.store.Select(ctx, query.Spec{
		From:    booksTable,
		Columns: bookColumns,
		Where:   where,
	})
	if err != nil {
		return nil, err
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, fmt.Errorf("collect book: %w", err)
	}
	if len(books) == 0 {
		return nil, model.ErrBookNotFound
	}
	return &books[0], nil
}

func (r *postgresRepository) AuthorsFor(ctx context.Context, bookIDs []uuid.UUID) (map[uuid.UUID][]model.AuthorLink, error) {
	links := make(map[uuid.UUID][]model.AuthorLink, len(bookIDs))
	if len(bookIDs) == 0 {
		return links, nil
	}

	ids := make([]any, len(bookIDs))
	for i, id := range bookIDs {
		ids[i] = id
	}

	rows, err := r.store.Select(ctx, query.Spec{
		From: bookAuthorsTable,
		Columns: []string{
			"book_authors.book_id",
			"book_authors.author_id",
			"authors.name",
			"book_authors.role",
		},
		Joins: []query.Join{{
			Table:   "authors",
			OnLeft:  "book_authors.author_id",
			OnRight: "authors.id",
		}},
		Where:   query.In("book_authors.book_id", ids...),
		OrderBy: []query.Order{query.Asc("book_authors.created_at")},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, authorID uuid.UUID
		var name, role string
		if err := rows.Scan(&bookID, &authorID, &name, &role); err != nil {
			return nil, fmt.Errorf("scan author link: %w", err)
		}
		links[bookID] = append(links[bookID], model.AuthorLink{
			AuthorID: authorID,
			Name:     name,
			Role:     model.AuthorRole(role),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}

func (r *postgresRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	return r.store.Exists(ctx, query.Spec{
		From:  booksTable,
		Where: query.And(query.Eq("books.slug", slug), allRows()),
	})
}

func (r *postgresRepository) ISBNTaken(ctx context.Context, isbn string, excludeID *uuid.UUID) (bool, error) {
	where := query.And(query.Eq("books.isbn", isbn), allRows())
	if excludeID != nil {
		where = query.And(where, query.Neq("books.id", *excludeID))
	}

	return r.store.Exists(ctx, query.Spec{
		From:  booksTable,
		Where: where,
	})
}

func (r *postgresRepository) Create(ctx context.Context, book *model.Book, refs []model.AuthorRef) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		txStore := r.store.WithExecutor(tx)

		if err := txStore.Insert(ctx, booksTable, map[string]any{
			"id":             book.ID,
			"slug":           book.Slug,
			"title":          book.Title,
			"isbn":           book.ISBN,
			"published_date": book.PublishedDate,
			"edition":        book.Edition,
			"format":         book.Format,
			"genre":          book.Genre,
			"description":    book.Description,
			"status":         string(book.Status),
			"created_at":     book.CreatedAt,
			"updated_at":     book.UpdatedAt,
		}); err != nil {
			return err
		}

		for _, ref := range refs {
			if err := txStore.Insert(ctx, bookAuthorsTable, map[string]any{
				"id":         uuid.New(),
				"book_id":    book.ID,
				"author_id":  ref.AuthorID,
				"role":       string(ref.Role),
				"created_at": book.CreatedAt,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return translateDBError(err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, set map[string]any) error {
	set["updated_at"] = time.Now()

	affected, err := r.store.Update(ctx, query.Spec{
		From:  booksTable,
		Where: query.Eq("books.id", id),
	}, set)
	if err != nil {
		return translateDBError(err)
	}
	if affected == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.store.SoftDelete(ctx, booksTable, query.Eq("books.id", id))
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) Restore(ctx context.Context, id uuid.UUID) error {
	affected, err := r.store.Restore(ctx, booksTable, query.Eq("books.id", id))
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// HardDelete removes the row regardless of its deletion state; the join
// rows go with it via the FK cascade.
func (r *postgresRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.store.Delete(ctx, query.Spec{
		From:  booksTable,
		Where: query.And(query.Eq("books.id", id), allRows()),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) AddAuthor(ctx context.Context, bookID, authorID uuid.UUID, role model.AuthorRole) error {
	err := r.store.Insert(ctx, bookAuthorsTable, map[string]any{
		"id":         uuid.New(),
		"book_id":    bookID,
		"author_id":  authorID,
		"role":       string(role),
		"created_at": time.Now(),
	})
	if err != nil {
		return translateDBError(err)
	}
	return nil
}

// RemoveAuthor is an idempotent unlink; removing an absent link is a no-op.
func (r *postgresRepository) RemoveAuthor(ctx context.Context, bookID, authorID uuid.UUID) error {
	_, err := r.store.Delete(ctx, query.Spec{
		From: bookAuthorsTable,
		Where: query.And(
			query.Eq("book_authors.book_id", bookID),
			query.Eq("book_authors.author_id", authorID),
		),
	})
	return err
}

// translateDBError maps constraint violations the pre-checks could not
// catch (races) onto the domain error set.
func translateDBError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		switch pgErr.ConstraintName {
		case "books_isbn_key":
			return model.ErrISBNAlreadyExists
		case "books_slug_key":
			return model.ErrSlugAlreadyExists
		case "book_authors_book_id_author_id_key":
			return model.ErrAuthorAlreadyLinked
		}
	case "23503":
		if pgErr.TableName == bookAuthorsTable {
			return model.ErrAuthorNotFound
		}
	}

	return err
}
