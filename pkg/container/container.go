package container

import (
	"context"
	"fmt"

	"bookshelf-backend/internal/config"
	authorhandler "bookshelf-backend/internal/domains/author/handler"
	authorrepo "bookshelf-backend/internal/domains/author/repository"
	authorservice "bookshelf-backend/internal/domains/author/service"
	bookhandler "bookshelf-backend/internal/domains/book/handler"
	bookrepo "bookshelf-backend/internal/domains/book/repository"
	bookservice "bookshelf-backend/internal/domains/book/service"
	rediscache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/storage"
	"bookshelf-backend/pkg/database"
	"bookshelf-backend/pkg/logger"
)

// Container wires configuration, infrastructure, repositories, services
// and handlers. Built once at startup.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  *rediscache.RedisCache

	AuthorHandler *authorhandler.AuthorHandler
	BookHandler   *bookhandler.BookHandler
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := database.Connect(ctx, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),

		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisCache := rediscache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, list caching degraded", err)
	}

	// Books are the only soft-deletable table; every store consumer goes
	// through the guard.
	store := storage.NewSoftDeleteStore(storage.NewPostgres(db.Pool), "books")

	authorRepository := authorrepo.NewPostgresRepository(store)
	bookRepository := bookrepo.NewPostgresRepository(db.Pool, store)

	authorService := authorservice.NewAuthorService(authorRepository)
	bookService := bookservice.NewBookService(bookRepository, authorRepository, redisCache, cfg.Cache.ListTTL)

	return &Container{
		Config:        cfg,
		DB:            db,
		Cache:         redisCache,
		AuthorHandler: authorhandler.NewAuthorHandler(authorService),
		BookHandler:   bookhandler.NewBookHandler(bookService),
	}, nil
}

// Cleanup releases infrastructure handles in reverse order of acquisition.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("failed to close redis client", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
