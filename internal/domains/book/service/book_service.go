package service

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	authormodel "bookshelf-backend/internal/domains/author/model"
	authorrepo "bookshelf-backend/internal/domains/author/repository"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/shared/utils"
	"bookshelf-backend/pkg/cache"
	"bookshelf-backend/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const listCachePrefix = "books:list:"

type bookService struct {
	repo       repository.Repository
	authorRepo authorrepo.Repository
	cache      cache.Cache
	listTTL    time.Duration
}

func NewBookService(repo repository.Repository, authorRepo authorrepo.Repository, c cache.Cache, listTTL time.Duration) BookService {
	return &bookService{
		repo:       repo,
		authorRepo: authorRepo,
		cache:      c,
		listTTL:    listTTL,
	}
}

func (s *bookService) List(ctx context.Context, q model.ListBooksQuery) (*model.BookPageResponse, error) {
	key := listCacheKey(q)

	var cached model.BookPageResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("book list cache read failed", err)
	} else if found {
		return &cached, nil
	}

	filter, err := toListFilter(q)
	if err != nil {
		return nil, err
	}

	books, total, nextCursor, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	links, err := s.repo.AuthorsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.BookWithAuthors, len(books))
	for i, b := range books {
		items[i] = model.BookWithAuthors{Book: b, Authors: links[b.ID]}
	}

	resp := model.ToPageResponse(model.BookPage{
		Items:      items,
		Total:      total,
		Limit:      filter.Take,
		NextCursor: nextCursor,
	})

	if err := s.cache.Set(ctx, key, resp, s.listTTL); err != nil {
		logger.Warn("book list cache write failed", err)
	}

	return &resp, nil
}

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, book)
}

func (s *bookService) Create(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error) {
	status := model.StatusDraft
	if req.Status != nil {
		status = model.BookStatus(*req.Status)
	}

	if req.ISBN != nil {
		taken, err := s.repo.ISBNTaken(ctx, *req.ISBN, nil)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrISBNAlreadyExists
		}
	}

	refs, err := s.resolveAuthorRefs(ctx, req.Authors)
	if err != nil {
		return nil, err
	}

	base := utils.Slugify(req.Title)
	if base == "" {
		base = "book"
	}
	slug, err := utils.GenerateUniqueSlug(ctx, s.repo.SlugTaken, base)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	publishedDate := req.PublishedDate
	if status == model.StatusPublished && publishedDate == nil {
		publishedDate = &now
	}

	book := &model.Book{
		ID:            uuid.New(),
		Slug:          slug,
		Title:         req.Title,
		ISBN:          req.ISBN,
		PublishedDate: publishedDate,
		Edition:       req.Edition,
		Format:        req.Format,
		Genre:         req.Genre,
		Description:   req.Description,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, book, refs); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return s.respond(ctx, book)
}

func (s *bookService) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.ISBN != nil {
		if existing.ISBN == nil || *existing.ISBN != *req.ISBN {
			taken, err := s.repo.ISBNTaken(ctx, *req.ISBN, &id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, model.ErrISBNAlreadyExists
			}
		}
		set["isbn"] = *req.ISBN
	}
	if req.Edition != nil {
		set["edition"] = *req.Edition
	}
	if req.Format != nil {
		set["format"] = *req.Format
	}
	if req.Genre != nil {
		set["genre"] = *req.Genre
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}

	status := existing.Status
	if req.Status != nil {
		status = model.BookStatus(*req.Status)
		set["status"] = string(status)
	}

	// First transition into Published without an explicit date stamps now.
	if req.PublishedDate != nil {
		set["published_date"] = *req.PublishedDate
	} else if status == model.StatusPublished && existing.Status != model.StatusPublished {
		set["published_date"] = time.Now()
	}

	if len(set) > 0 {
		if err := s.repo.Update(ctx, id, set); err != nil {
			return nil, err
		}
		s.invalidateList(ctx)
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, book)
}

func (s *bookService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	book, err := s.repo.GetAnyByID(ctx, id)
	if err != nil {
		return err
	}
	if book.IsDeleted() {
		return model.ErrAlreadyDeleted
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.invalidateList(ctx)
	return nil
}

func (s *bookService) Restore(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	book, err := s.repo.GetAnyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !book.IsDeleted() {
		return nil, model.ErrNotDeleted
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)

	restored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, restored)
}

func (s *bookService) HardDelete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetAnyByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.HardDelete(ctx, id); err != nil {
		return err
	}

	s.invalidateList(ctx)
	return nil
}

func (s *bookService) AddAuthor(ctx context.Context, bookID uuid.UUID, req model.AttachAuthorRequest) (*model.BookResponse, error) {
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		return nil, model.ErrAuthorNotFound
	}
	if _, err := s.authorRepo.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, authormodel.ErrAuthorNotFound) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, err
	}

	if err := s.repo.AddAuthor(ctx, bookID, authorID, model.AuthorRole(req.Role)); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return s.respond(ctx, book)
}

func (s *bookService) RemoveAuthor(ctx context.Context, bookID, authorID uuid.UUID) (*model.BookResponse, error) {
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveAuthor(ctx, bookID, authorID); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return s.respond(ctx, book)
}

// resolveAuthorRefs validates that every referenced author exists and
// returns the typed links. A single missing id fails the whole request.
func (s *bookService) resolveAuthorRefs(ctx context.Context, inputs []model.AuthorRefInput) ([]model.AuthorRef, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	refs := make([]model.AuthorRef, len(inputs))
	ids := make([]uuid.UUID, len(inputs))
	for i, in := range inputs {
		id, err := uuid.Parse(in.AuthorID)
		if err != nil {
			return nil, &model.MissingAuthorsError{IDs: []string{in.AuthorID}}
		}
		ids[i] = id
		refs[i] = model.AuthorRef{AuthorID: id, Role: model.AuthorRole(in.Role)}
	}

	found, err := s.authorRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	existing := make(map[uuid.UUID]struct{}, len(found))
	for _, a := range found {
		existing[a.ID] = struct{}{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, &model.MissingAuthorsError{IDs: missing}
	}

	return refs, nil
}

// respond reloads the book's author links and maps to the API shape.
func (s *bookService) respond(ctx context.Context, book *model.Book) (*model.BookResponse, error) {
	links, err := s.repo.AuthorsFor(ctx, []uuid.UUID{book.ID})
	if err != nil {
		return nil, err
	}

	resp := model.ToResponse(model.BookWithAuthors{Book: *book, Authors: links[book.ID]})
	return &resp, nil
}

func (s *bookService) invalidateList(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, listCachePrefix+"*"); err != nil {
		logger.Warn("book list cache invalidation failed", err)
	}
}

func listCacheKey(q model.ListBooksQuery) string {
	raw, err := json.Marshal(q)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", q))
	}
	return fmt.Sprintf("%s%x", listCachePrefix, md5.Sum(raw))
}

func toListFilter(q model.ListBooksQuery) (model.ListFilter, error) {
	filter := model.ListFilter{
		SortBy:   model.SortByCreatedAt,
		SortDesc: true,
		Take:     model.DefaultTake,
	}

	if q.AuthorID != "" {
		id, err := uuid.Parse(q.AuthorID)
		if err != nil {
			return filter, fmt.Errorf("invalid author id %q: %w", q.AuthorID, err)
		}
		filter.AuthorID = &id
	}
	if q.Status != "" {
		status := model.BookStatus(q.Status)
		filter.Status = &status
	}
	if q.Genre != "" {
		genre := q.Genre
		filter.Genre = &genre
	}
	if q.Format != "" {
		format := q.Format
		filter.Format = &format
	}
	if q.SortBy != "" {
		filter.SortBy = q.SortBy
	}
	if q.SortOrder != "" {
		filter.SortDesc = q.SortOrder == "desc"
	}
	if q.Cursor != "" {
		id, err := uuid.Parse(q.Cursor)
		if err != nil {
			return filter, model.ErrInvalidCursor
		}
		filter.Cursor = &id
	}
	if q.Take > 0 {
		filter.Take = q.Take
	}

	return filter, nil
}
