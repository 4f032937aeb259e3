package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authormodel "bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/book/model"
)

// fakeBookRepo keeps books in memory and honors the repository contract:
// List and GetByID see live rows only, GetAnyByID and the uniqueness
// probes see everything.
type fakeBookRepo struct {
	books     []model.Book
	links     map[uuid.UUID][]model.AuthorLink
	names     map[uuid.UUID]string
	listCalls int
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		links: map[uuid.UUID][]model.AuthorLink{},
		names: map[uuid.UUID]string{},
	}
}

func (f *fakeBookRepo) find(id uuid.UUID) *model.Book {
	for i := range f.books {
		if f.books[i].ID == id {
			return &f.books[i]
		}
	}
	return nil
}

func (f *fakeBookRepo) List(ctx context.Context, filter model.ListFilter) ([]model.Book, int64, *uuid.UUID, error) {
	f.listCalls++

	var matched []model.Book
	for _, b := range f.books {
		if b.IsDeleted() {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.Genre != nil && (b.Genre == nil || *b.Genre != *filter.Genre) {
			continue
		}
		if filter.Format != nil && (b.Format == nil || *b.Format != *filter.Format) {
			continue
		}
		if filter.AuthorID != nil {
			linked := false
			for _, l := range f.links[b.ID] {
				if l.AuthorID == *filter.AuthorID {
					linked = true
				}
			}
			if !linked {
				continue
			}
		}
		matched = append(matched, b)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		if filter.SortBy == model.SortByTitle {
			less = matched[i].Title < matched[j].Title
		} else {
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if filter.SortDesc {
			return !less
		}
		return less
	})

	total := int64(len(matched))

	if filter.Cursor != nil {
		idx := -1
		for i, b := range matched {
			if b.ID == *filter.Cursor {
				idx = i
			}
		}
		if idx < 0 {
			return nil, 0, nil, model.ErrInvalidCursor
		}
		matched = matched[idx+1:]
	}

	var next *uuid.UUID
	if len(matched) > filter.Take {
		matched = matched[:filter.Take]
		last := matched[len(matched)-1].ID
		next = &last
	}

	return matched, total, next, nil
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b := f.find(id)
	if b == nil || b.IsDeleted() {
		return nil, model.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepo) GetAnyByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b := f.find(id)
	if b == nil {
		return nil, model.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepo) AuthorsFor(ctx context.Context, bookIDs []uuid.UUID) (map[uuid.UUID][]model.AuthorLink, error) {
	out := map[uuid.UUID][]model.AuthorLink{}
	for _, id := range bookIDs {
		if links, ok := f.links[id]; ok {
			out[id] = links
		}
	}
	return out, nil
}

func (f *fakeBookRepo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	for _, b := range f.books {
		if b.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookRepo) ISBNTaken(ctx context.Context, isbn string, excludeID *uuid.UUID) (bool, error) {
	for _, b := range f.books {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.ISBN != nil && *b.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookRepo) Create(ctx context.Context, book *model.Book, refs []model.AuthorRef) error {
	f.books = append(f.books, *book)
	for _, ref := range refs {
		f.links[book.ID] = append(f.links[book.ID], model.AuthorLink{
			AuthorID: ref.AuthorID,
			Name:     f.names[ref.AuthorID],
			Role:     ref.Role,
		})
	}
	return nil
}

func (f *fakeBookRepo) Update(ctx context.Context, id uuid.UUID, set map[string]any) error {
	b := f.find(id)
	if b == nil || b.IsDeleted() {
		return model.ErrBookNotFound
	}

	for col, v := range set {
		switch col {
		case "title":
			b.Title = v.(string)
		case "isbn":
			isbn := v.(string)
			b.ISBN = &isbn
		case "status":
			b.Status = model.BookStatus(v.(string))
		case "published_date":
			d := v.(time.Time)
			b.PublishedDate = &d
		case "genre":
			g := v.(string)
			b.Genre = &g
		case "updated_at":
			b.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeBookRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	b := f.find(id)
	if b == nil || b.IsDeleted() {
		return model.ErrBookNotFound
	}
	now := time.Now()
	b.DeletedAt = &now
	return nil
}

func (f *fakeBookRepo) Restore(ctx context.Context, id uuid.UUID) error {
	b := f.find(id)
	if b == nil || !b.IsDeleted() {
		return model.ErrBookNotFound
	}
	b.DeletedAt = nil
	return nil
}

func (f *fakeBookRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	for i := range f.books {
		if f.books[i].ID == id {
			f.books = append(f.books[:i], f.books[i+1:]...)
			delete(f.links, id)
			return nil
		}
	}
	return model.ErrBookNotFound
}

func (f *fakeBookRepo) AddAuthor(ctx context.Context, bookID, authorID uuid.UUID, role model.AuthorRole) error {
	for _, l := range f.links[bookID] {
		if l.AuthorID == authorID {
			return model.ErrAuthorAlreadyLinked
		}
	}
	f.links[bookID] = append(f.links[bookID], model.AuthorLink{
		AuthorID: authorID,
		Name:     f.names[authorID],
		Role:     role,
	})
	return nil
}

func (f *fakeBookRepo) RemoveAuthor(ctx context.Context, bookID, authorID uuid.UUID) error {
	links := f.links[bookID]
	for i, l := range links {
		if l.AuthorID == authorID {
			f.links[bookID] = append(links[:i], links[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeAuthorRepo struct {
	authors map[uuid.UUID]authormodel.Author
}

func (f *fakeAuthorRepo) List(ctx context.Context) ([]authormodel.Author, error) {
	return nil, nil
}

func (f *fakeAuthorRepo) GetByID(ctx context.Context, id uuid.UUID) (*authormodel.Author, error) {
	a, ok := f.authors[id]
	if !ok {
		return nil, authormodel.ErrAuthorNotFound
	}
	return &a, nil
}

func (f *fakeAuthorRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]authormodel.Author, error) {
	var out []authormodel.Author
	for _, id := range ids {
		if a, ok := f.authors[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAuthorRepo) Create(ctx context.Context, a *authormodel.Author) error {
	f.authors[a.ID] = *a
	return nil
}

func (f *fakeAuthorRepo) Update(ctx context.Context, id uuid.UUID, set map[string]any) error {
	return nil
}

func (f *fakeAuthorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// memoryCache is a map-backed Cache for exercising the list cache path.
type memoryCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, jsoniter.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := jsoniter.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			delete(m.values, k)
		}
	}
	m.deletes++
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }

func newTestService() (BookService, *fakeBookRepo, *fakeAuthorRepo, *memoryCache) {
	bookRepo := newFakeBookRepo()
	authorRepo := &fakeAuthorRepo{authors: map[uuid.UUID]authormodel.Author{}}
	c := newMemoryCache()
	svc := NewBookService(bookRepo, authorRepo, c, time.Minute)
	return svc, bookRepo, authorRepo, c
}

func seedAuthor(repo *fakeAuthorRepo, bookRepo *fakeBookRepo, name string) uuid.UUID {
	id := uuid.New()
	repo.authors[id] = authormodel.Author{ID: id, Name: name}
	bookRepo.names[id] = name
	return id
}

func TestBookService_Create_Defaults(t *testing.T) {
	svc, _, _, _ := newTestService()

	resp, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)

	assert.Equal(t, "dune", resp.Slug)
	assert.Equal(t, string(model.StatusDraft), resp.Status)
	assert.Nil(t, resp.PublishedDate)
	assert.Empty(t, resp.Authors)
}

func TestBookService_Create_SlugSequence(t *testing.T) {
	svc, _, _, _ := newTestService()

	first, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)

	assert.Equal(t, "dune", first.Slug)
	assert.Equal(t, "dune-1", second.Slug)
}

func TestBookService_Create_ISBNConflict(t *testing.T) {
	svc, repo, _, _ := newTestService()

	isbn := "978-0441013593"
	_, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune", ISBN: &isbn})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune Messiah", ISBN: &isbn})
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)
	assert.Len(t, repo.books, 1)
}

func TestBookService_Create_ISBNHeldBySoftDeletedBook(t *testing.T) {
	svc, _, _, _ := newTestService()

	isbn := "978-0441013593"
	created, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune", ISBN: &isbn})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), uuid.MustParse(created.ID)))

	// The unique constraint spans deleted rows, so the pre-check does too.
	_, err = svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune Reissue", ISBN: &isbn})
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)
}

func TestBookService_Create_MissingAuthors(t *testing.T) {
	svc, repo, authorRepo, _ := newTestService()

	valid := seedAuthor(authorRepo, repo, "Frank Herbert")
	invalid := uuid.New()

	_, err := svc.Create(context.Background(), model.CreateBookRequest{
		Title: "Dune",
		Authors: []model.AuthorRefInput{
			{AuthorID: valid.String(), Role: string(model.RoleAuthor)},
			{AuthorID: invalid.String(), Role: string(model.RoleEditor)},
		},
	})

	var missing *model.MissingAuthorsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{invalid.String()}, missing.IDs)
	assert.Empty(t, repo.books)
}

func TestBookService_Create_PublishedStampsDate(t *testing.T) {
	svc, _, _, _ := newTestService()

	status := string(model.StatusPublished)
	resp, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune", Status: &status})
	require.NoError(t, err)

	require.NotNil(t, resp.PublishedDate)
}

func TestBookService_Create_ExplicitPublishedDateKept(t *testing.T) {
	svc, _, _, _ := newTestService()

	status := string(model.StatusPublished)
	date := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	resp, err := svc.Create(context.Background(), model.CreateBookRequest{
		Title:         "Dune",
		Status:        &status,
		PublishedDate: &date,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.PublishedDate)
	assert.Equal(t, "2020-03-01T00:00:00Z", *resp.PublishedDate)
}

func TestBookService_Update_PublishTransitionStampsDate(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)
	require.Nil(t, created.PublishedDate)
	id := uuid.MustParse(created.ID)

	status := string(model.StatusPublished)
	updated, err := svc.Update(context.Background(), id, model.UpdateBookRequest{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedDate)
	stamped := *updated.PublishedDate

	// A later update that does not touch status leaves the date alone.
	genre := "science fiction"
	again, err := svc.Update(context.Background(), id, model.UpdateBookRequest{Genre: &genre})
	require.NoError(t, err)
	require.NotNil(t, again.PublishedDate)
	assert.Equal(t, stamped, *again.PublishedDate)
}

func TestBookService_Update_OmittedFieldsKept(t *testing.T) {
	svc, _, _, _ := newTestService()

	isbn := "978-0441013593"
	created, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune", ISBN: &isbn})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	newTitle := "Dune (Deluxe)"
	updated, err := svc.Update(context.Background(), id, model.UpdateBookRequest{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "Dune (Deluxe)", updated.Title)
	require.NotNil(t, updated.ISBN)
	assert.Equal(t, isbn, *updated.ISBN)
	assert.Equal(t, created.Slug, updated.Slug)
}

func TestBookService_SoftDeleteRestoreRoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.SoftDelete(context.Background(), id))

	_, err = svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	err = svc.SoftDelete(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrAlreadyDeleted)

	restored, err := svc.Restore(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, restored.Slug)
	assert.Equal(t, created.Title, restored.Title)
	assert.Nil(t, restored.DeletedAt)

	_, err = svc.Restore(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrNotDeleted)
}

func TestBookService_HardDelete_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.HardDelete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestBookService_List_CursorWalk(t *testing.T) {
	svc, _, _, _ := newTestService()

	first, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune Messiah"})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), model.ListBooksQuery{
		SortBy:    model.SortByCreatedAt,
		SortOrder: "asc",
		Take:      1,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.Equal(t, int64(2), page.Total)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, first.ID, *page.NextCursor)

	page2, err := svc.List(context.Background(), model.ListBooksQuery{
		SortBy:    model.SortByCreatedAt,
		SortOrder: "asc",
		Cursor:    *page.NextCursor,
		Take:      1,
	})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, second.ID, page2.Items[0].ID)
	assert.Nil(t, page2.NextCursor)
}

func TestBookService_List_ExcludesSoftDeleted(t *testing.T) {
	svc, _, _, _ := newTestService()

	kept, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)
	gone, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune Messiah"})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), uuid.MustParse(gone.ID)))

	page, err := svc.List(context.Background(), model.ListBooksQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, kept.ID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.Total)
}

func TestBookService_List_CachedAndInvalidated(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)

	q := model.ListBooksQuery{Take: 10}
	_, err = svc.List(context.Background(), q)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune Messiah"})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Len(t, page.Items, 2)
}

func TestBookService_AddAuthor(t *testing.T) {
	svc, repo, authorRepo, _ := newTestService()

	authorID := seedAuthor(authorRepo, repo, "Frank Herbert")
	created, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)
	bookID := uuid.MustParse(created.ID)

	resp, err := svc.AddAuthor(context.Background(), bookID, model.AttachAuthorRequest{
		AuthorID: authorID.String(),
		Role:     string(model.RoleAuthor),
	})
	require.NoError(t, err)
	require.Len(t, resp.Authors, 1)
	assert.Equal(t, "Frank Herbert", resp.Authors[0].Name)
	assert.Equal(t, string(model.RoleAuthor), resp.Authors[0].Role)

	_, err = svc.AddAuthor(context.Background(), bookID, model.AttachAuthorRequest{
		AuthorID: authorID.String(),
		Role:     string(model.RoleEditor),
	})
	assert.ErrorIs(t, err, model.ErrAuthorAlreadyLinked)
}

func TestBookService_AddAuthor_UnknownAuthor(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), model.CreateBookRequest{Title: "Dune"})
	require.NoError(t, err)

	_, err = svc.AddAuthor(context.Background(), uuid.MustParse(created.ID), model.AttachAuthorRequest{
		AuthorID: uuid.New().String(),
		Role:     string(model.RoleAuthor),
	})
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
}

func TestBookService_RemoveAuthor_Idempotent(t *testing.T) {
	svc, repo, authorRepo, _ := newTestService()

	authorID := seedAuthor(authorRepo, repo, "Frank Herbert")
	created, err := svc.Create(context.Background(), model.CreateBookRequest{
		Title: "Dune",
		Authors: []model.AuthorRefInput{
			{AuthorID: authorID.String(), Role: string(model.RoleAuthor)},
		},
	})
	require.NoError(t, err)
	bookID := uuid.MustParse(created.ID)

	resp, err := svc.RemoveAuthor(context.Background(), bookID, authorID)
	require.NoError(t, err)
	assert.Empty(t, resp.Authors)

	// Removing an absent link is a no-op, not an error.
	resp, err = svc.RemoveAuthor(context.Background(), bookID, authorID)
	require.NoError(t, err)
	assert.Empty(t, resp.Authors)
}
