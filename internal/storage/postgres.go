package storage

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"bookshelf-backend/internal/storage/query"
)

const dialect = "postgres"

// Postgres compiles query.Specs into prepared SQL and runs it on a pgx
// executor.
type Postgres struct {
	exec Executor
}

func NewPostgres(exec Executor) *Postgres {
	return &Postgres{exec: exec}
}

func (s *Postgres) WithExecutor(exec Executor) Store {
	return &Postgres{exec: exec}
}

func (s *Postgres) Select(ctx context.Context, spec query.Spec) (pgx.Rows, error) {
	sql, args, err := compileSelect(spec)
	if err != nil {
		return nil, err
	}

	rows, err := s.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", spec.From, err)
	}
	return rows, nil
}

func (s *Postgres) Count(ctx context.Context, spec query.Spec) (int64, error) {
	sql, args, err := compileCount(spec)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := s.exec.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", spec.From, err)
	}
	return total, nil
}

func (s *Postgres) Exists(ctx context.Context, spec query.Spec) (bool, error) {
	inner := spec
	inner.Columns = nil
	inner.OrderBy = nil
	inner.Limit = 1

	ds, err := selectDataset(inner)
	if err != nil {
		return false, err
	}
	sql, args, err := ds.Select(goqu.L("1")).Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("compile exists on %s: %w", spec.From, err)
	}

	var exists bool
	wrapped := fmt.Sprintf("SELECT EXISTS(%s)", sql)
	if err := s.exec.QueryRow(ctx, wrapped, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists on %s: %w", spec.From, err)
	}
	return exists, nil
}

func (s *Postgres) Insert(ctx context.Context, table string, record map[string]any) error {
	sql, args, err := goqu.Dialect(dialect).
		Insert(table).
		Rows(goqu.Record(record)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("compile insert into %s: %w", table, err)
	}

	if _, err := s.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, spec query.Spec, set map[string]any) (int64, error) {
	ds := goqu.Dialect(dialect).Update(spec.From).Set(goqu.Record(set))
	if spec.Where != nil {
		expr, err := compilePredicate(spec.Where)
		if err != nil {
			return 0, err
		}
		ds = ds.Where(expr)
	}

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("compile update of %s: %w", spec.From, err)
	}

	tag, err := s.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", spec.From, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Postgres) Delete(ctx context.Context, spec query.Spec) (int64, error) {
	ds := goqu.Dialect(dialect).Delete(spec.From)
	if spec.Where != nil {
		expr, err := compilePredicate(spec.Where)
		if err != nil {
			return 0, err
		}
		ds = ds.Where(expr)
	}

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("compile delete from %s: %w", spec.From, err)
	}

	tag, err := s.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", spec.From, err)
	}
	return tag.RowsAffected(), nil
}

// ============================================
// SPEC COMPILATION
// ============================================

func compileSelect(spec query.Spec) (string, []any, error) {
	ds, err := selectDataset(spec)
	if err != nil {
		return "", nil, err
	}

	if len(spec.Columns) > 0 {
		cols := make([]any, len(spec.Columns))
		for i, c := range spec.Columns {
			cols[i] = goqu.I(c)
		}
		ds = ds.Select(cols...)
	}
	if spec.Distinct {
		ds = ds.Distinct()
	}
	for _, o := range spec.OrderBy {
		if o.Desc {
			ds = ds.Order(goqu.I(o.Column).Desc())
		} else {
			ds = ds.Order(goqu.I(o.Column).Asc())
		}
	}

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("compile select from %s: %w", spec.From, err)
	}
	return sql, args, nil
}

func compileCount(spec query.Spec) (string, []any, error) {
	inner := spec
	inner.OrderBy = nil
	inner.Limit = 0

	ds, err := selectDataset(inner)
	if err != nil {
		return "", nil, err
	}

	// Joins can fan rows out, so a distinct count targets the entity key.
	if spec.Distinct && len(spec.Columns) == 1 {
		ds = ds.Select(goqu.COUNT(goqu.DISTINCT(goqu.I(spec.Columns[0]))))
	} else {
		ds = ds.Select(goqu.COUNT(goqu.L("*")))
	}

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("compile count of %s: %w", spec.From, err)
	}
	return sql, args, nil
}

func selectDataset(spec query.Spec) (*goqu.SelectDataset, error) {
	ds := goqu.Dialect(dialect).From(spec.From)

	for _, j := range spec.Joins {
		ds = ds.Join(goqu.T(j.Table), goqu.On(goqu.I(j.OnLeft).Eq(goqu.I(j.OnRight))))
	}
	if spec.Where != nil {
		expr, err := compilePredicate(spec.Where)
		if err != nil {
			return nil, err
		}
		ds = ds.Where(expr)
	}
	if spec.Limit > 0 {
		ds = ds.Limit(spec.Limit)
	}
	return ds, nil
}

func compilePredicate(pred query.Predicate) (exp.Expression, error) {
	switch p := pred.(type) {
	case query.Cond:
		return compileCond(p)
	case query.Conjunction:
		children := make([]exp.Expression, 0, len(p.Preds))
		for _, child := range p.Preds {
			expr, err := compilePredicate(child)
			if err != nil {
				return nil, err
			}
			children = append(children, expr)
		}
		if p.Or {
			return goqu.Or(children...), nil
		}
		return goqu.And(children...), nil
	case query.Negation:
		inner, err := compilePredicate(p.Pred)
		if err != nil {
			return nil, err
		}
		return goqu.L("NOT (?)", inner), nil
	}
	return nil, fmt.Errorf("unsupported predicate %T", pred)
}

func compileCond(c query.Cond) (exp.Expression, error) {
	col := goqu.I(c.Column)

	switch c.Op {
	case query.OpEq:
		return col.Eq(c.Value), nil
	case query.OpNeq:
		return col.Neq(c.Value), nil
	case query.OpGt:
		return col.Gt(c.Value), nil
	case query.OpGte:
		return col.Gte(c.Value), nil
	case query.OpLt:
		return col.Lt(c.Value), nil
	case query.OpLte:
		return col.Lte(c.Value), nil
	case query.OpIn:
		return col.In(c.Values...), nil
	case query.OpIsNull:
		return col.IsNull(), nil
	case query.OpNotNull:
		return col.IsNotNull(), nil
	case query.OpAny:
		// Tautology over the column: matches both NULL and NOT NULL.
		return goqu.Or(col.IsNull(), col.IsNotNull()), nil
	}
	return nil, fmt.Errorf("unsupported operator %q on column %q", c.Op, c.Column)
}
