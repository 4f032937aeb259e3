// Package response shapes every API reply into one envelope:
// {statusCode, message?, data, meta?, error?}.
package response

import (
	"github.com/gin-gonic/gin"
)

type Body struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Meta       interface{} `json:"meta,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody matches the error taxonomy: a machine-readable type, an
// optional offending field and human-readable detail.
type ErrorBody struct {
	Type   string      `json:"type"`
	Field  string      `json:"field,omitempty"`
	Detail interface{} `json:"detail"`
}

// Page wraps a cursor-paginated collection.
type Page struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Limit      int         `json:"limit"`
	NextCursor *string     `json:"nextCursor"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Body{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

func OK(c *gin.Context, data interface{}) {
	Success(c, 200, "", data)
}

func Paginated(c *gin.Context, items interface{}, total int64, limit int, nextCursor *string) {
	Success(c, 200, "", Page{
		Items:      items,
		Total:      total,
		Limit:      limit,
		NextCursor: nextCursor,
	})
}

func Error(c *gin.Context, statusCode int, errType, field string, detail interface{}) {
	c.JSON(statusCode, Body{
		StatusCode: statusCode,
		Data:       nil,
		Error: &ErrorBody{
			Type:   errType,
			Field:  field,
			Detail: detail,
		},
	})
}

func BadRequest(c *gin.Context, detail interface{}) {
	Error(c, 400, "BadRequest", "", detail)
}

func NotFound(c *gin.Context, detail interface{}) {
	Error(c, 404, "NotFound", "", detail)
}

func Conflict(c *gin.Context, detail interface{}) {
	Error(c, 409, "Conflict", "", detail)
}

func InternalServerError(c *gin.Context) {
	Error(c, 500, "InternalError", "", "internal server error")
}
