// Package storage executes query.Specs against PostgreSQL. The base store
// compiles specs to SQL with goqu; SoftDeleteStore wraps it to hide
// soft-deleted rows by default.
package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookshelf-backend/internal/storage/query"
)

// Executor is the subset of pgx that runs statements. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so a Store can be rebound into a transaction.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store runs query specifications. Implementations must not mutate the
// specs they receive.
type Store interface {
	Select(ctx context.Context, spec query.Spec) (pgx.Rows, error)
	Count(ctx context.Context, spec query.Spec) (int64, error)
	Exists(ctx context.Context, spec query.Spec) (bool, error)
	Insert(ctx context.Context, table string, record map[string]any) error
	Update(ctx context.Context, spec query.Spec, set map[string]any) (int64, error)
	Delete(ctx context.Context, spec query.Spec) (int64, error)

	// WithExecutor returns a copy of the store bound to the given executor,
	// typically a transaction.
	WithExecutor(exec Executor) Store
}
