package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/book/model"
)

// stubBookService returns canned values per call.
type stubBookService struct {
	book *model.BookResponse
	page *model.BookPageResponse
	err  error
}

func (s *stubBookService) List(ctx context.Context, q model.ListBooksQuery) (*model.BookPageResponse, error) {
	return s.page, s.err
}

func (s *stubBookService) GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	return s.book, s.err
}

func (s *stubBookService) Create(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error) {
	return s.book, s.err
}

func (s *stubBookService) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error) {
	return s.book, s.err
}

func (s *stubBookService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubBookService) Restore(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	return s.book, s.err
}

func (s *stubBookService) HardDelete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubBookService) AddAuthor(ctx context.Context, bookID uuid.UUID, req model.AttachAuthorRequest) (*model.BookResponse, error) {
	return s.book, s.err
}

func (s *stubBookService) RemoveAuthor(ctx context.Context, bookID, authorID uuid.UUID) (*model.BookResponse, error) {
	return s.book, s.err
}

func newTestRouter(svc *stubBookService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookHandler(svc)

	r := gin.New()
	r.GET("/books", h.List)
	r.GET("/books/:id", h.GetByID)
	r.POST("/books", h.Create)
	r.PUT("/books/:id", h.Update)
	r.DELETE("/books/:id", h.SoftDelete)
	r.DELETE("/books/:id/force", h.HardDelete)
	r.POST("/books/:id/restore", h.Restore)
	r.POST("/books/:id/authors", h.AddAuthor)
	r.DELETE("/books/:id/authors/:authorId", h.RemoveAuthor)
	return r
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      *struct {
		Type   string          `json:"type"`
		Field  string          `json:"field"`
		Detail json.RawMessage `json:"detail"`
	} `json:"error"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestBookHandler_Create(t *testing.T) {
	svc := &stubBookService{book: &model.BookResponse{
		ID:     uuid.NewString(),
		Slug:   "dune",
		Title:  "Dune",
		Status: string(model.StatusDraft),
	}}
	r := newTestRouter(svc)

	w, env := doRequest(t, r, http.MethodPost, "/books", map[string]any{"title": "Dune"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, "book created", env.Message)
}

func TestBookHandler_Create_ValidationFailure(t *testing.T) {
	r := newTestRouter(&stubBookService{})

	w, env := doRequest(t, r, http.MethodPost, "/books", map[string]any{"title": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BadRequest", env.Error.Type)
}

func TestBookHandler_Create_InvalidStatus(t *testing.T) {
	r := newTestRouter(&stubBookService{})

	w, _ := doRequest(t, r, http.MethodPost, "/books", map[string]any{
		"title":  "Dune",
		"status": "IN_PRINT",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookHandler_GetByID_InvalidID(t *testing.T) {
	r := newTestRouter(&stubBookService{})

	w, env := doRequest(t, r, http.MethodGet, "/books/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BadRequest", env.Error.Type)
}

func TestBookHandler_GetByID_NotFound(t *testing.T) {
	r := newTestRouter(&stubBookService{err: model.ErrBookNotFound})

	w, env := doRequest(t, r, http.MethodGet, "/books/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NotFound", env.Error.Type)
}

func TestBookHandler_SoftDelete_Conflict(t *testing.T) {
	r := newTestRouter(&stubBookService{err: model.ErrAlreadyDeleted})

	w, env := doRequest(t, r, http.MethodDelete, "/books/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Conflict", env.Error.Type)
}

func TestBookHandler_List_PaginatedEnvelope(t *testing.T) {
	next := uuid.NewString()
	svc := &stubBookService{page: &model.BookPageResponse{
		Items:      []model.BookResponse{{ID: uuid.NewString(), Slug: "dune", Title: "Dune"}},
		Total:      2,
		Limit:      1,
		NextCursor: &next,
	}}
	r := newTestRouter(svc)

	w, env := doRequest(t, r, http.MethodGet, "/books?take=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items      []json.RawMessage `json:"items"`
		Total      int64             `json:"total"`
		Limit      int               `json:"limit"`
		NextCursor *string           `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Limit)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, next, *page.NextCursor)
}

func TestBookHandler_List_RejectsUnknownSortKey(t *testing.T) {
	r := newTestRouter(&stubBookService{})

	w, _ := doRequest(t, r, http.MethodGet, "/books?sortBy=isbn", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookHandler_AddAuthor_MissingRole(t *testing.T) {
	r := newTestRouter(&stubBookService{})

	w, _ := doRequest(t, r, http.MethodPost, "/books/"+uuid.NewString()+"/authors", map[string]any{
		"authorId": uuid.NewString(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
