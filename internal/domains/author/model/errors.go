package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/logger"
)

var (
	ErrAuthorNotFound = errors.New("author not found")
)

// HandleAuthorError translates a service error into the HTTP error
// envelope. Unknown errors are logged and surfaced as a generic 500.
func HandleAuthorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		response.Error(c, http.StatusNotFound, "NotFound", "", err.Error())
	default:
		logger.Error("unhandled author error", err)
		response.InternalServerError(c)
	}
}
