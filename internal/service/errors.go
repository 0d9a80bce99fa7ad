package service

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule violation. Handlers map kinds to HTTP
// status codes; services never produce user-facing representations.
type Kind int

const (
	// KindNotFound means the addressed entity does not exist.
	KindNotFound Kind = iota + 1
	// KindConflict means the operation collides with existing state, e.g. a
	// duplicate title.
	KindConflict
	// KindForbidden means a rule protects the record from the operation.
	KindForbidden
	// KindInvalid means the operation is not valid in the entity's current
	// state or with the given input.
	KindInvalid
)

// Error is a business-rule violation raised by the service layer.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the business-error kind from err. ok is false when err is
// not a business error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
