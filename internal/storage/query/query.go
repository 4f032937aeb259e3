// Package query describes database queries as data: a table, a column list
// and a predicate tree. Specs are engine-agnostic; the storage package
// compiles them to SQL. Keeping predicates as a walkable tree is what lets
// the soft-delete layer inspect a query before it runs.
package query

import "strings"

// Op is a comparison operator on a single column.
type Op string

const (
	OpEq      Op = "eq"
	OpNeq     Op = "neq"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpIn      Op = "in"
	OpIsNull  Op = "is_null"
	OpNotNull Op = "not_null"

	// OpAny matches every row while still referencing its column.
	// It exists so callers can opt out of soft-delete injection explicitly.
	OpAny Op = "any"
)

// Predicate is a node in a filter tree: either a Cond leaf or an
// And/Or/Not combinator.
type Predicate interface {
	isPredicate()
}

// Cond is a leaf predicate comparing one column against a value.
// Column may be table-qualified ("books.deleted_at").
type Cond struct {
	Column string
	Op     Op
	Value  any
	Values []any // populated for OpIn
}

// Conjunction combines child predicates with AND or OR.
type Conjunction struct {
	Or    bool
	Preds []Predicate
}

// Negation inverts its child predicate.
type Negation struct {
	Pred Predicate
}

func (Cond) isPredicate()        {}
func (Conjunction) isPredicate() {}
func (Negation) isPredicate()    {}

func Eq(column string, v any) Predicate  { return Cond{Column: column, Op: OpEq, Value: v} }
func Neq(column string, v any) Predicate { return Cond{Column: column, Op: OpNeq, Value: v} }
func Gt(column string, v any) Predicate  { return Cond{Column: column, Op: OpGt, Value: v} }
func Gte(column string, v any) Predicate { return Cond{Column: column, Op: OpGte, Value: v} }
func Lt(column string, v any) Predicate  { return Cond{Column: column, Op: OpLt, Value: v} }
func Lte(column string, v any) Predicate { return Cond{Column: column, Op: OpLte, Value: v} }

func In(column string, values ...any) Predicate {
	return Cond{Column: column, Op: OpIn, Values: values}
}

func IsNull(column string) Predicate  { return Cond{Column: column, Op: OpIsNull} }
func NotNull(column string) Predicate { return Cond{Column: column, Op: OpNotNull} }

// Any matches rows regardless of the column's value. Including it in a
// filter marks the column as intentionally unconstrained.
func Any(column string) Predicate { return Cond{Column: column, Op: OpAny} }

// And combines predicates; nil children are dropped and a single survivor
// is returned as-is.
func And(preds ...Predicate) Predicate { return combine(false, preds) }

// Or combines predicates the same way And does.
func Or(preds ...Predicate) Predicate { return combine(true, preds) }

func Not(pred Predicate) Predicate { return Negation{Pred: pred} }

func combine(or bool, preds []Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Conjunction{Or: or, Preds: kept}
}

// References reports whether the tree mentions the given column anywhere,
// walking through And/Or/Not combinators. Table qualifiers are ignored, so
// "books.deleted_at" references "deleted_at".
func References(pred Predicate, column string) bool {
	switch p := pred.(type) {
	case nil:
		return false
	case Cond:
		return baseColumn(p.Column) == column
	case Conjunction:
		for _, child := range p.Preds {
			if References(child, column) {
				return true
			}
		}
		return false
	case Negation:
		return References(p.Pred, column)
	}
	return false
}

func baseColumn(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		return column[i+1:]
	}
	return column
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Join is an inner join on a column equality.
type Join struct {
	Table   string
	OnLeft  string
	OnRight string
}

// Spec is a complete query specification against one entity table.
type Spec struct {
	From     string
	Columns  []string
	Joins    []Join
	Where    Predicate
	OrderBy  []Order
	Limit    uint
	Distinct bool
}
