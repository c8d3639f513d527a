package mentorship

import (
	"errors"
	"fmt"

	"github.com/garnizeh/mentorship/pkg/repository"
)

// Kind classifies a failed operation. Every kind is recoverable: the stored
// state is left consistent and the caller may act on the outcome.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
)

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds whatever the detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrCapacityExceeded  = &Error{Kind: KindCapacityExceeded}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrConflict          = &Error{Kind: KindConflict}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// fromStore translates repository sentinels for the entity named by what.
// Other errors are storage failures and are wrapped unchanged.
func fromStore(err error, what, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Detail: fmt.Sprintf("%s %s not found", what, id), Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &Error{Kind: KindConflict, Detail: fmt.Sprintf("%s %s is being modified concurrently", what, id), Err: err}
	default:
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
}
