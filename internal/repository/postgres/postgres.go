package postgres

// Package postgres implements the repository interfaces over PostgreSQL
// using database/sql with parameterized queries. One generic implementation
// serves every entity type; each type supplies a Mapping at construction.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"itemapi/internal/dberr"
	"itemapi/internal/repository"
	"itemapi/internal/specification"
)

// DBTX is the subset of database/sql operations the repositories need. Both
// *sql.DB and *sql.Tx satisfy it; the unit of work hands repositories its
// transaction so staged changes stay invisible until commit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner abstracts *sql.Row and *sql.Rows for mapping scan functions.
type RowScanner interface {
	Scan(dest ...any) error
}

// Mapping binds one entity type to its table. Columns excludes the id
// column; Values must produce arguments in Columns order; Scan must read
// id followed by Columns.
type Mapping[T any] struct {
	Table   string
	Columns []string
	ID      func(*T) int64
	Values  func(*T) []any
	Scan    func(RowScanner) (*T, error)
}

// Generic is the PostgreSQL implementation of repository.Repository[T],
// bound to one entity mapping and one session.
type Generic[T any] struct {
	db DBTX
	m  Mapping[T]
}

// NewGeneric constructs a repository for the mapping, bound to db.
func NewGeneric[T any](db DBTX, m Mapping[T]) *Generic[T] {
	return &Generic[T]{db: db, m: m}
}

func (r *Generic[T]) selectColumns() string {
	return "id, " + strings.Join(r.m.Columns, ", ")
}

// rebind rewrites `?` placeholders to PostgreSQL's numbered form, starting
// at $start.
func rebind(fragment string, start int) string {
	var b strings.Builder
	n := start
	for _, c := range fragment {
		if c == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// GetByID fetches a single entity. A missing row returns (nil, nil).
func (r *Generic[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.selectColumns(), r.m.Table)
	entity, err := r.m.Scan(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "get_by_id")
	}
	return entity, nil
}

// GetAll returns entities ordered by id using LIMIT/OFFSET pagination.
func (r *Generic[T]) GetAll(ctx context.Context, skip, limit int) ([]T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id LIMIT $1 OFFSET $2", r.selectColumns(), r.m.Table)
	return r.queryList(ctx, "get_all", q, limit, skip)
}

// FindBySpecification applies the compiled filter, then paginates.
func (r *Generic[T]) FindBySpecification(ctx context.Context, spec specification.Specification, skip, limit int) ([]T, error) {
	where, args := r.whereClause(spec, 1)
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id LIMIT $%d OFFSET $%d",
		r.selectColumns(), r.m.Table, where, len(args)+1, len(args)+2)
	args = append(args, limit, skip)
	return r.queryList(ctx, "find_by_specification", q, args...)
}

// CountBySpecification counts matches ignoring pagination.
func (r *Generic[T]) CountBySpecification(ctx context.Context, spec specification.Specification) (int, error) {
	where, args := r.whereClause(spec, 1)
	q := fmt.Sprintf("SELECT COUNT(id) FROM %s%s", r.m.Table, where)
	var total int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_by_specification")
	}
	return total, nil
}

// GetPaginatedWithFilters returns one page plus the total match count. The
// page and count queries are evaluated independently from the identical
// filter predicate.
func (r *Generic[T]) GetPaginatedWithFilters(ctx context.Context, spec specification.Specification, skip, limit int) (*repository.PageResult[T], error) {
	if spec == nil {
		spec = specification.All()
	}
	items, err := r.FindBySpecification(ctx, spec, skip, limit)
	if err != nil {
		return nil, err
	}
	total, err := r.CountBySpecification(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[T]{Items: items, Total: total}, nil
}

// Create stages an insert and returns the stored row, including the
// generated identity and any server-computed defaults. The transaction is
// not finalized here.
func (r *Generic[T]) Create(ctx context.Context, entity *T) (*T, error) {
	placeholders := make([]string, len(r.m.Columns))
	for i := range r.m.Columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.m.Table,
		strings.Join(r.m.Columns, ", "),
		strings.Join(placeholders, ", "),
		r.selectColumns(),
	)
	stored, err := r.m.Scan(r.db.QueryRowContext(ctx, q, r.m.Values(entity)...))
	if err != nil {
		return nil, dberr.Wrap(err, "create")
	}
	return stored, nil
}

// Update writes the entity's current field values. Returns (nil, nil) when
// the row no longer exists. Non-committing.
func (r *Generic[T]) Update(ctx context.Context, entity *T) (*T, error) {
	assignments := make([]string, len(r.m.Columns))
	for i, col := range r.m.Columns {
		assignments[i] = col + " = $" + strconv.Itoa(i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		r.m.Table,
		strings.Join(assignments, ", "),
		len(r.m.Columns)+1,
		r.selectColumns(),
	)
	args := append(r.m.Values(entity), r.m.ID(entity))
	stored, err := r.m.Scan(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "update")
	}
	return stored, nil
}

// Delete stages removal by id. Returns false when no row matched, which is
// not an error. Non-committing.
func (r *Generic[T]) Delete(ctx context.Context, id int64) (bool, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.m.Table)
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, dberr.Wrap(err, "delete")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, dberr.Wrap(err, "delete")
	}
	return affected > 0, nil
}

// Exists reports whether a row with the given id exists.
func (r *Generic[T]) Exists(ctx context.Context, id int64) (bool, error) {
	q := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", r.m.Table)
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "exists")
	}
	return exists, nil
}

func (r *Generic[T]) whereClause(spec specification.Specification, start int) (string, []any) {
	if spec == nil {
		return "", nil
	}
	f := spec.ToFilter()
	if f == nil {
		return "", nil
	}
	return " WHERE " + rebind(f.SQL, start), f.Args
}

func (r *Generic[T]) queryList(ctx context.Context, op, q string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, dberr.Wrap(err, op)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		entity, err := r.m.Scan(rows)
		if err != nil {
			return nil, dberr.Wrap(err, op)
		}
		items = append(items, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, op)
	}
	return items, nil
}
