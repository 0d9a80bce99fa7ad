package specification

// Package specification implements composable query predicates. A
// specification compiles to a SQL fragment with `?` placeholders, or to nil
// when it imposes no constraint. Composition never mutates its operands.

// Filter is a compiled predicate: a SQL boolean expression using `?`
// placeholders plus its arguments. The consumer is responsible for rebinding
// placeholders to the driver's syntax.
type Filter struct {
	SQL  string
	Args []any
}

// Specification is an immutable predicate over one entity type.
type Specification interface {
	// ToFilter compiles the predicate. A nil result means "no constraint":
	// the specification matches every row.
	ToFilter() *Filter
}

// And combines two specifications conjunctively. A side with no constraint
// acts as the identity element: the other side is returned unchanged.
func And(left, right Specification) Specification {
	return andSpec{left: left, right: right}
}

// Or combines two specifications disjunctively. When exactly one side has no
// constraint, the other side's filter is returned as-is; the missing half
// does not widen the result to "always true". This mirrors the behavior the
// data layer has always had and callers depend on.
func Or(left, right Specification) Specification {
	return orSpec{left: left, right: right}
}

// Not negates a specification. Negating "no constraint" stays "no
// constraint" rather than becoming "match nothing".
func Not(spec Specification) Specification {
	return notSpec{spec: spec}
}

// All matches every row: ToFilter returns nil.
func All() Specification {
	return allSpec{}
}

// Compare matches rows where column <op> value, e.g. Compare("title", "=", t).
func Compare(column, op string, value any) Specification {
	return compareSpec{column: column, op: op, value: value}
}

// Eq is shorthand for Compare(column, "=", value).
func Eq(column string, value any) Specification {
	return Compare(column, "=", value)
}

type allSpec struct{}

func (allSpec) ToFilter() *Filter { return nil }

type compareSpec struct {
	column string
	op     string
	value  any
}

func (s compareSpec) ToFilter() *Filter {
	return &Filter{
		SQL:  s.column + " " + s.op + " ?",
		Args: []any{s.value},
	}
}

type andSpec struct {
	left, right Specification
}

func (s andSpec) ToFilter() *Filter {
	lf := s.left.ToFilter()
	rf := s.right.ToFilter()
	switch {
	case lf == nil:
		return rf
	case rf == nil:
		return lf
	}
	return &Filter{
		SQL:  "(" + lf.SQL + " AND " + rf.SQL + ")",
		Args: append(append([]any{}, lf.Args...), rf.Args...),
	}
}

type orSpec struct {
	left, right Specification
}

func (s orSpec) ToFilter() *Filter {
	lf := s.left.ToFilter()
	rf := s.right.ToFilter()
	switch {
	case lf == nil && rf == nil:
		return nil
	case lf == nil:
		return rf
	case rf == nil:
		return lf
	}
	return &Filter{
		SQL:  "(" + lf.SQL + " OR " + rf.SQL + ")",
		Args: append(append([]any{}, lf.Args...), rf.Args...),
	}
}

type notSpec struct {
	spec Specification
}

func (s notSpec) ToFilter() *Filter {
	f := s.spec.ToFilter()
	if f == nil {
		return nil
	}
	return &Filter{
		SQL:  "NOT (" + f.SQL + ")",
		Args: append([]any{}, f.Args...),
	}
}
