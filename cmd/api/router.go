package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/container"
)

// NewRouter builds the gin engine and mounts every route.
func NewRouter(c *container.Container) *gin.Engine {
	if c.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.Error(ctx, http.StatusServiceUnavailable, "Unavailable", "", "database unreachable")
			return
		}
		response.OK(ctx, gin.H{"status": "ok", "version": c.Config.App.Version})
	})

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			books.GET("", c.BookHandler.List)
			books.POST("", c.BookHandler.Create)
			books.GET("/:id", c.BookHandler.GetByID)
			books.PUT("/:id", c.BookHandler.Update)
			books.DELETE("/:id", c.BookHandler.SoftDelete)
			books.DELETE("/:id/force", c.BookHandler.HardDelete)
			books.POST("/:id/restore", c.BookHandler.Restore)
			books.POST("/:id/authors", c.BookHandler.AddAuthor)
			books.DELETE("/:id/authors/:authorId", c.BookHandler.RemoveAuthor)
		}

		authors := v1.Group("/authors")
		{
			authors.GET("", c.AuthorHandler.List)
			authors.POST("", c.AuthorHandler.Create)
			authors.GET("/:id", c.AuthorHandler.GetByID)
			authors.PUT("/:id", c.AuthorHandler.Update)
			authors.DELETE("/:id", c.AuthorHandler.Delete)
		}
	}

	return r
}
