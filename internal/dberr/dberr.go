package dberr

// Package dberr defines the closed set of store error kinds the rest of the
// application reasons about. Repositories and the unit of work return these;
// translation to HTTP status codes happens once, at the handler boundary.

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind identifies a class of store failure.
type Kind int

const (
	// KindOperation is the catch-all for unclassified store failures.
	KindOperation Kind = iota
	// KindConnection means the store was unreachable.
	KindConnection
	// KindTimeout means the operation was cancelled or exceeded its deadline.
	KindTimeout
	// KindUniqueViolation is a unique-constraint violation.
	KindUniqueViolation
	// KindForeignKeyViolation is a foreign-key-constraint violation.
	KindForeignKeyViolation
	// KindNotNullViolation is a not-null-constraint violation.
	KindNotNullViolation
	// KindCheckViolation is a check-constraint violation.
	KindCheckViolation
	// KindData means the data was rejected at the store boundary (type or
	// format mismatch).
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindUniqueViolation:
		return "unique_violation"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindNotNullViolation:
		return "not_null_violation"
	case KindCheckViolation:
		return "check_violation"
	case KindData:
		return "data"
	default:
		return "operation"
	}
}

// Error wraps a store failure with its classified kind. The wrapped error is
// diagnostic detail only and must never reach an API caller verbatim.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s error during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DeletionBlockedError reports a delete prevented by dependent records.
type DeletionBlockedError struct {
	EntityType   string
	EntityID     int64
	Reason       string
	Dependencies []Dependency
}

// Dependency identifies one record blocking a deletion.
type Dependency struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
}

func (e *DeletionBlockedError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: %s (%d dependent records)",
		e.EntityType, e.EntityID, e.Reason, len(e.Dependencies))
}

// Wrap classifies err and wraps it with the operation name. A nil err
// returns nil; an already-classified error passes through unchanged.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	var blocked *DeletionBlockedError
	if errors.As(err, &blocked) {
		return err
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

// Classify maps a raw driver error onto a Kind using SQLSTATE classes and
// context/network errors.
func Classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return KindUniqueViolation
		case "23503":
			return KindForeignKeyViolation
		case "23502":
			return KindNotNullViolation
		case "23514":
			return KindCheckViolation
		case "57014": // query_canceled
			return KindTimeout
		}
		if len(pgErr.Code) >= 2 {
			switch pgErr.Code[:2] {
			case "08": // connection_exception
				return KindConnection
			case "22": // data_exception
				return KindData
			}
		}
		return KindOperation
	}

	if pgconn.Timeout(err) {
		return KindTimeout
	}

	return KindOperation
}

// KindOf returns the classified kind of err, or KindOperation when err was
// never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOperation
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
