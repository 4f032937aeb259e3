package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/logger"
)

var (
	ErrBookNotFound        = errors.New("book not found")
	ErrAuthorNotFound      = errors.New("author not found")
	ErrISBNAlreadyExists   = errors.New("isbn already exists")
	ErrSlugAlreadyExists   = errors.New("slug already exists")
	ErrAlreadyDeleted      = errors.New("book is already deleted")
	ErrNotDeleted          = errors.New("book is not deleted")
	ErrAuthorAlreadyLinked = errors.New("author is already linked to this book")
	ErrInvalidCursor       = errors.New("invalid cursor")
)

// MissingAuthorsError names every referenced author that does not exist.
type MissingAuthorsError struct {
	IDs []string
}

func (e *MissingAuthorsError) Error() string {
	return fmt.Sprintf("authors not found: %s", strings.Join(e.IDs, ", "))
}

// HandleBookError translates a service error into the HTTP error envelope.
// Unknown errors are logged and surfaced as a generic 500.
func HandleBookError(c *gin.Context, err error) {
	var missing *MissingAuthorsError

	switch {
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrAuthorNotFound):
		response.Error(c, http.StatusNotFound, "NotFound", "", err.Error())
	case errors.Is(err, ErrISBNAlreadyExists):
		response.Error(c, http.StatusConflict, "Conflict", "isbn", err.Error())
	case errors.Is(err, ErrSlugAlreadyExists):
		response.Error(c, http.StatusConflict, "UniqueConstraintViolation", "slug", err.Error())
	case errors.Is(err, ErrAlreadyDeleted), errors.Is(err, ErrNotDeleted),
		errors.Is(err, ErrAuthorAlreadyLinked):
		response.Error(c, http.StatusConflict, "Conflict", "", err.Error())
	case errors.Is(err, ErrInvalidCursor):
		response.Error(c, http.StatusBadRequest, "BadRequest", "cursor", err.Error())
	case errors.As(err, &missing):
		response.Error(c, http.StatusBadRequest, "BadRequest", "authors", missing.Error())
	default:
		logger.Error("unhandled book error", err)
		response.InternalServerError(c)
	}
}
