package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/storage/query"
)

// DeletedColumn is the soft-delete marker column on soft-deletable tables.
const DeletedColumn = "deleted_at"

// SoftDeleteStore decorates a Store so that queries against registered
// tables only see live rows by default. A filter that already references
// the marker column anywhere in its tree (including query.Any) is passed
// through untouched; everything else gets a single `deleted_at IS NULL`
// clause ANDed onto the top level. Tables that are not registered are
// never rewritten.
type SoftDeleteStore struct {
	base   Store
	tables map[string]struct{}
	now    func() time.Time
}

func NewSoftDeleteStore(base Store, tables ...string) *SoftDeleteStore {
	registered := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		registered[t] = struct{}{}
	}
	return &SoftDeleteStore{base: base, tables: registered, now: time.Now}
}

func (s *SoftDeleteStore) WithExecutor(exec Executor) Store {
	return &SoftDeleteStore{base: s.base.WithExecutor(exec), tables: s.tables, now: s.now}
}

func (s *SoftDeleteStore) Select(ctx context.Context, spec query.Spec) (pgx.Rows, error) {
	return s.base.Select(ctx, s.guard(spec))
}

func (s *SoftDeleteStore) Count(ctx context.Context, spec query.Spec) (int64, error) {
	return s.base.Count(ctx, s.guard(spec))
}

func (s *SoftDeleteStore) Exists(ctx context.Context, spec query.Spec) (bool, error) {
	return s.base.Exists(ctx, s.guard(spec))
}

// Insert is never intercepted; new rows are live by definition.
func (s *SoftDeleteStore) Insert(ctx context.Context, table string, record map[string]any) error {
	return s.base.Insert(ctx, table, record)
}

func (s *SoftDeleteStore) Update(ctx context.Context, spec query.Spec, set map[string]any) (int64, error) {
	return s.base.Update(ctx, s.guard(spec), set)
}

func (s *SoftDeleteStore) Delete(ctx context.Context, spec query.Spec) (int64, error) {
	return s.base.Delete(ctx, s.guard(spec))
}

// SoftDelete marks matching live rows as deleted by stamping the marker
// column. The row stays in the table.
func (s *SoftDeleteStore) SoftDelete(ctx context.Context, table string, where query.Predicate) (int64, error) {
	now := s.now()
	spec := query.Spec{
		From:  table,
		Where: query.And(where, query.IsNull(DeletedColumn)),
	}
	return s.base.Update(ctx, spec, map[string]any{
		DeletedColumn: now,
		"updated_at":  now,
	})
}

// Restore clears the marker on matching soft-deleted rows.
func (s *SoftDeleteStore) Restore(ctx context.Context, table string, where query.Predicate) (int64, error) {
	spec := query.Spec{
		From:  table,
		Where: query.And(where, query.NotNull(DeletedColumn)),
	}
	return s.base.Update(ctx, spec, map[string]any{
		DeletedColumn: nil,
		"updated_at":  s.now(),
	})
}

func (s *SoftDeleteStore) guard(spec query.Spec) query.Spec {
	if _, ok := s.tables[spec.From]; !ok {
		return spec
	}
	if spec.Where != nil && query.References(spec.Where, DeletedColumn) {
		return spec
	}

	// Qualify the marker so the clause stays unambiguous under joins.
	marker := query.IsNull(spec.From + "." + DeletedColumn)
	spec.Where = query.And(spec.Where, marker)
	return spec
}
