package uow

// Package uow implements the unit of work: a transaction boundary that owns
// one *sql.Tx for its lifetime, hands out repositories bound to it, and
// finalizes all staged repository effects atomically with a single commit or
// rollback.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"itemapi/internal/dberr"
	"itemapi/internal/repository"
	"itemapi/internal/repository/postgres"
)

var (
	// ErrNoActiveSession is returned when a nested scope is requested while
	// no transaction is open.
	ErrNoActiveSession = errors.New("no active session")

	// ErrFinished is returned when a finished unit of work is committed or
	// rolled back again. A unit of work must not be reused after exit.
	ErrFinished = errors.New("unit of work already finished")
)

// Factory creates units of work against one database handle.
type Factory struct {
	db *sql.DB
}

// NewFactory creates a unit-of-work factory bound to db.
func NewFactory(db *sql.DB) *Factory {
	return &Factory{db: db}
}

// Begin opens a fresh transaction. An unreachable store surfaces as a
// connection-class error; there is no silent fallback.
func (f *Factory) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dberr.Wrap(err, "begin")
	}
	return &UnitOfWork{tx: tx}, nil
}

// Do runs fn inside a unit of work: commit on nil error, rollback otherwise.
// The original error propagates; a rollback failure is joined onto it. The
// transaction is also rolled back when fn panics.
func (f *Factory) Do(ctx context.Context, fn func(u *UnitOfWork) error) error {
	u, err := f.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if !u.done {
			_ = u.Rollback()
		}
	}()

	if err := fn(u); err != nil {
		if rbErr := u.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrFinished) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return u.Commit()
}

// UnitOfWork owns one open transaction and lazily caches one repository per
// entity type. It is not safe for concurrent use; each request gets its own.
type UnitOfWork struct {
	tx         *sql.Tx
	done       bool
	savepoints int

	items repository.ItemRepository
	users repository.UserRepository
}

// Items returns the item repository for this unit of work, constructing and
// caching it on first use.
func (u *UnitOfWork) Items() repository.ItemRepository {
	if u.items == nil {
		u.items = postgres.NewItemPostgres(u.tx)
	}
	return u.items
}

// Users returns the user repository for this unit of work, constructing and
// caching it on first use.
func (u *UnitOfWork) Users() repository.UserRepository {
	if u.users == nil {
		u.users = postgres.NewUserPostgres(u.tx)
	}
	return u.users
}

// Commit finalizes all staged changes. A commit failure is surfaced and the
// unit of work still ends up closed.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return ErrFinished
	}
	err := u.tx.Commit()
	u.finish()
	return dberr.Wrap(err, "commit")
}

// Rollback discards all staged changes and closes the unit of work.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return ErrFinished
	}
	err := u.tx.Rollback()
	u.finish()
	return dberr.Wrap(err, "rollback")
}

// Nested runs fn inside a savepoint on the open transaction, releasing it on
// success and rolling back to it when fn fails, leaving the outer unit of
// work usable either way. Requesting a nested scope without an active
// session fails with ErrNoActiveSession.
func (u *UnitOfWork) Nested(ctx context.Context, fn func(ctx context.Context) error) error {
	if u.done || u.tx == nil {
		return ErrNoActiveSession
	}

	u.savepoints++
	name := fmt.Sprintf("sp_%d", u.savepoints)

	if _, err := u.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return dberr.Wrap(err, "savepoint")
	}
	if err := fn(ctx); err != nil {
		if _, rbErr := u.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, dberr.Wrap(rbErr, "rollback_to_savepoint"))
		}
		return err
	}
	if _, err := u.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return dberr.Wrap(err, "release_savepoint")
	}
	return nil
}

// finish closes the session state on every exit path: the repository cache
// is dropped and the transaction handle is no longer usable.
func (u *UnitOfWork) finish() {
	u.done = true
	u.items = nil
	u.users = nil
}
