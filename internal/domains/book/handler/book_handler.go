package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/shared/response"
)

type BookHandler struct {
	service service.BookService
}

func NewBookHandler(service service.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /v1/books
func (h *BookHandler) List(c *gin.Context) {
	var q model.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}
	if err := q.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Paginated(c, page.Items, page.Total, page.Limit, page.NextCursor)
}

// GetByID handles GET /v1/books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.OK(c, book)
}

// Create handles POST /v1/books
func (h *BookHandler) Create(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "book created", book)
}

// Update handles PUT /v1/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book updated", book)
}

// SoftDelete handles DELETE /v1/books/:id
func (h *BookHandler) SoftDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), id); err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book deleted", nil)
}

// Restore handles POST /v1/books/:id/restore
func (h *BookHandler) Restore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	book, err := h.service.Restore(c.Request.Context(), id)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book restored", book)
}

// HardDelete handles DELETE /v1/books/:id/force
func (h *BookHandler) HardDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	if err := h.service.HardDelete(c.Request.Context(), id); err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "book permanently deleted", nil)
}

// AddAuthor handles POST /v1/books/:id/authors
func (h *BookHandler) AddAuthor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	var req model.AttachAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.AddAuthor(c.Request.Context(), id, req)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "author attached", book)
}

// RemoveAuthor handles DELETE /v1/books/:id/authors/:authorId
func (h *BookHandler) RemoveAuthor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}
	authorID, err := uuid.Parse(c.Param("authorId"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	book, err := h.service.RemoveAuthor(c.Request.Context(), id, authorID)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "author detached", book)
}
